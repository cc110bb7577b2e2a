package sink

import (
	"gocv.io/x/gocv"
)

type IService interface {
	Open() error
	Write(img gocv.Mat) error
	Close() error
}
