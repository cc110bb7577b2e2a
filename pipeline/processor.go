package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

// processor is the single consumer of the frame queue. It runs each frame
// through the transformer, tags the result with its zero-based capture
// order and hands it to the processed queue. Being the only consumer of a
// single-producer queue is what preserves end-to-end ordering; adding
// workers here would require a reorder buffer ahead of the writer.
func processor[T any](canxCtx context.Context, runID string, transformer Transformer[T], in *Queue[T], out *Queue[Processed[T]], errorStream chan interface{}, dropFn func(T)) model.DetectorStats {
	var startTime = time.Now().Unix()
	var frames = 0
	var errors = 0
	var index = 0
	var totalProcTime time.Duration

	defer out.Finish()

	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"processor context cancelled",
			)
			return detectorStats(runID, frames, errors, startTime, totalProcTime)

		default:
			item, ok := in.Dequeue()
			if !ok {
				return detectorStats(runID, frames, errors, startTime, totalProcTime)
			}

			startProc := time.Now()
			result, err := transformer.Transform(item)
			totalProcTime += time.Since(startProc)
			if err != nil {
				// Skip the frame and keep output indexes contiguous.
				// The transformer released the frame already.
				errors++
				if errorStream != nil {
					errorStream <- model.GenError("pipeline_processor",
						err,
						map[string]interface{}{"index": index},
						"error transforming frame")
				}
				continue
			}

			if !out.Enqueue(Processed[T]{Index: index, Item: result}) {
				// Queue was finished under cancellation
				if dropFn != nil {
					dropFn(result)
				}
				return detectorStats(runID, frames, errors, startTime, totalProcTime)
			}

			index++
			frames++
		}
	}
}

func detectorStats(runID string, frames, errors int, startTime int64, totalProcTime time.Duration) model.DetectorStats {
	uptime := time.Now().Unix() - startTime
	fps := frames
	if uptime > 0 {
		fps = int(float64(frames) / float64(uptime))
	}

	var avgProcTime float64
	if frames > 0 {
		avgProcTime = totalProcTime.Seconds() / float64(frames)
	}

	stats := model.DetectorStats{
		RunID:       runID,
		Name:        "processor",
		Frames:      frames,
		Errors:      errors,
		Uptime:      uptime,
		FPS:         fps,
		AvgProcTime: avgProcTime,
		Timestamp:   time.Now().Unix(),
	}

	lgr.Logger.Debug(
		"processor exiting",
		slog.Int("frames", stats.Frames),
		slog.Int("errors", stats.Errors),
	)

	return stats
}
