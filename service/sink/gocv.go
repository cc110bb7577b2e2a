package sink

import (
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vp-go/service/config"
	"github.com/khaledhikmat/vp-go/service/lgr"
	"github.com/khaledhikmat/vp-go/service/source"
)

type gocvService struct {
	CfgSvc    config.IService
	SourceSvc source.IService

	writer *gocv.VideoWriter
}

// NewGoCV builds a sink that writes the output stream with the same
// codec, frame rate and size as the source. The source must be opened
// before the sink.
func NewGoCV(cfgsvc config.IService, sourcesvc source.IService) IService {
	return &gocvService{
		CfgSvc:    cfgsvc,
		SourceSvc: sourcesvc,
	}
}

func (svc *gocvService) Open() error {
	props := svc.SourceSvc.Properties()

	codec := props.Codec
	if codec == "" {
		// Device captures do not always report a codec
		codec = "avc1"
	}

	fps := props.FPS
	if fps <= 0 {
		fps = 30
	}

	writer, err := gocv.VideoWriterFile(svc.CfgSvc.GetVideoOutputPath(), codec, fps, props.Width, props.Height, true)
	if err != nil {
		return fmt.Errorf("error opening video writer: %w", err)
	}

	if !writer.IsOpened() {
		writer.Close()
		return fmt.Errorf("video writer could not be opened: %s", svc.CfgSvc.GetVideoOutputPath())
	}

	svc.writer = writer

	lgr.Logger.Info(
		"video sink opened",
		slog.String("path", svc.CfgSvc.GetVideoOutputPath()),
		slog.String("codec", codec),
		slog.Float64("fps", fps),
	)

	return nil
}

func (svc *gocvService) Write(img gocv.Mat) error {
	defer img.Close() // Crucial to close the image to avoid memory leaks

	if img.Empty() {
		return fmt.Errorf("refusing to write an empty frame")
	}

	return svc.writer.Write(img)
}

func (svc *gocvService) Close() error {
	if svc.writer == nil {
		return nil
	}

	err := svc.writer.Close()
	svc.writer = nil
	return err
}
