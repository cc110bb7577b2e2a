package source

import (
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vp-go/model"
)

type IService interface {
	Open() error
	ReadNext() (gocv.Mat, bool)
	Properties() model.StreamProperties
	Close() error
}
