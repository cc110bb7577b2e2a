package data

import "github.com/khaledhikmat/vp-go/model"

type fakeService struct {
}

func NewFake() IService {
	return &fakeService{}
}

func (svc *fakeService) NewError(_ interface{}) error {
	return nil
}

func (svc *fakeService) NewReaderStats(_ model.ReaderStats) error {
	return nil
}

func (svc *fakeService) NewDetectorStats(_ model.DetectorStats) error {
	return nil
}

func (svc *fakeService) NewWriterStats(_ model.WriterStats) error {
	return nil
}

func (svc *fakeService) NewPipelineStats(_ model.PipelineStats) error {
	return nil
}
