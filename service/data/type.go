package data

import "github.com/khaledhikmat/vp-go/model"

type IService interface {
	NewError(err interface{}) error
	NewReaderStats(stats model.ReaderStats) error
	NewDetectorStats(stats model.DetectorStats) error
	NewWriterStats(stats model.WriterStats) error
	NewPipelineStats(stats model.PipelineStats) error
}
