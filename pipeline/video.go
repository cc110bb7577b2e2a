package pipeline

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/detector"
	"github.com/khaledhikmat/vp-go/service/sink"
	"github.com/khaledhikmat/vp-go/service/source"
)

// Video runs the capture/detect/write pipeline over gocv-backed source
// and sink services. The detector is injected so callers can swap the
// YOLO detector for a pass-through or any other transformer.
func Video(canxCtx context.Context, svcs ServicesFactory, detectorSvc detector.IService, errorStream, statsStream chan interface{}) (model.PipelineStats, error) {
	sourceSvc := source.NewGoCV(svcs.CfgSvc)
	sinkSvc := sink.NewGoCV(svcs.CfgSvc, sourceSvc)

	return Run[gocv.Mat](canxCtx, sourceSvc, detectorSvc, sinkSvc,
		errorStream, statsStream,
		func(m gocv.Mat) {
			m.Close() // Crucial to close the image to avoid memory leaks
		})
}
