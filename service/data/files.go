package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/config"
)

type filesDBService struct {
	CfgSvc config.IService
}

func NewFilesDB(cfgsvc config.IService) IService {
	return &filesDBService{
		CfgSvc: cfgsvc,
	}
}

func (svc *filesDBService) NewError(err interface{}) error {
	return svc.appendJSON("errors.json", err)
}

func (svc *filesDBService) NewReaderStats(stats model.ReaderStats) error {
	return svc.appendJSON("reader_stats.json", stats)
}

func (svc *filesDBService) NewDetectorStats(stats model.DetectorStats) error {
	return svc.appendJSON("detector_stats.json", stats)
}

func (svc *filesDBService) NewWriterStats(stats model.WriterStats) error {
	return svc.appendJSON("writer_stats.json", stats)
}

func (svc *filesDBService) NewPipelineStats(stats model.PipelineStats) error {
	return svc.appendJSON("pipeline_stats.json", stats)
}

// appendJSON appends one JSON line per record so runs accumulate
func (svc *filesDBService) appendJSON(filename string, v interface{}) error {
	folder := svc.CfgSvc.GetStatsFolder()
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("error creating stats folder: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling stats: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(folder, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening stats file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing stats file: %w", err)
	}

	return nil
}
