package detector

import (
	"gocv.io/x/gocv"
)

type passthroughService struct {
}

// NewPassThrough returns a detector that hands frames through untouched.
// Useful for wiring and benchmarking the pipeline without a model.
func NewPassThrough() IService {
	return &passthroughService{}
}

func (svc *passthroughService) Transform(img gocv.Mat) (gocv.Mat, error) {
	return img, nil
}

func (svc *passthroughService) Close() error {
	return nil
}
