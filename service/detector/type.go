package detector

import (
	"gocv.io/x/gocv"
)

// IService is the opaque per-frame transformation the pipeline invokes.
// Transform takes ownership of the frame and returns the (possibly
// annotated) frame to hand downstream; on error the frame is released.
type IService interface {
	Transform(img gocv.Mat) (gocv.Mat, error)
	Close() error
}
