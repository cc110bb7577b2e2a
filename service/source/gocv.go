package source

import (
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/config"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

type gocvService struct {
	CfgSvc config.IService

	capture *gocv.VideoCapture
	buffer  gocv.Mat
	props   model.StreamProperties
}

func NewGoCV(cfgsvc config.IService) IService {
	return &gocvService{
		CfgSvc: cfgsvc,
	}
}

func (svc *gocvService) Open() error {
	var capture *gocv.VideoCapture
	var err error

	if svc.CfgSvc.IsDeviceSource() {
		capture, err = gocv.OpenVideoCapture(svc.CfgSvc.GetVideoDevice())
	} else {
		capture, err = gocv.OpenVideoCapture(svc.CfgSvc.GetVideoInputPath())
	}
	if err != nil {
		return fmt.Errorf("error opening video capture: %w", err)
	}

	svc.capture = capture
	svc.buffer = gocv.NewMat()
	svc.props = model.StreamProperties{
		Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    capture.Get(gocv.VideoCaptureFPS),
		Codec:  capture.CodecString(),
	}

	lgr.Logger.Info(
		"video source opened",
		slog.Bool("device", svc.CfgSvc.IsDeviceSource()),
		slog.String("path", svc.CfgSvc.GetVideoInputPath()),
		slog.Int("width", svc.props.Width),
		slog.Int("height", svc.props.Height),
		slog.Float64("fps", svc.props.FPS),
		slog.String("codec", svc.props.Codec),
	)

	return nil
}

func (svc *gocvService) ReadNext() (gocv.Mat, bool) {
	if ok := svc.capture.Read(&svc.buffer); !ok || svc.buffer.Empty() {
		// End of stream or a decode error. Treat both as exhaustion.
		return gocv.Mat{}, false
	}

	// Clone so the next read does not mutate a frame already handed off
	return svc.buffer.Clone(), true
}

func (svc *gocvService) Properties() model.StreamProperties {
	return svc.props
}

func (svc *gocvService) Close() error {
	if svc.capture == nil {
		return nil
	}

	svc.buffer.Close() // Crucial to close the image to avoid memory leaks
	err := svc.capture.Close()
	svc.capture = nil
	return err
}
