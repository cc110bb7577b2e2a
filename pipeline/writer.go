package pipeline

import (
	"context"
	"time"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

// writer forwards processed frames to the sink in dequeue order, which is
// enqueue order from the processor and hence original capture order. It
// performs no reordering.
func writer[T any](canxCtx context.Context, runID string, snk Sink[T], in *Queue[Processed[T]], errorStream chan interface{}) model.WriterStats {
	var startTime = time.Now().Unix()
	var frames = 0
	var errors = 0

	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"writer context cancelled",
			)
			return writerStats(runID, frames, errors, startTime)

		default:
			processed, ok := in.Dequeue()
			if !ok {
				return writerStats(runID, frames, errors, startTime)
			}

			if err := snk.Write(processed.Item); err != nil {
				errors++
				if errorStream != nil {
					errorStream <- model.GenError("pipeline_writer",
						err,
						map[string]interface{}{"index": processed.Index},
						"error writing frame")
				}
				continue
			}

			frames++
		}
	}
}

func writerStats(runID string, frames, errors int, startTime int64) model.WriterStats {
	uptime := time.Now().Unix() - startTime
	fps := frames
	if uptime > 0 {
		fps = int(float64(frames) / float64(uptime))
	}

	return model.WriterStats{
		RunID:     runID,
		Name:      "writer",
		Frames:    frames,
		Errors:    errors,
		Uptime:    uptime,
		FPS:       fps,
		Timestamp: time.Now().Unix(),
	}
}
