package pipeline

import (
	"context"
	"time"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

// reader drains the source into the frame queue until the source reports
// exhaustion (or a read error, treated the same way), then finishes the
// queue so downstream stages observe end of stream.
func reader[T any](canxCtx context.Context, runID string, src Source[T], out *Queue[T], dropFn func(T)) model.ReaderStats {
	var startTime = time.Now().Unix()
	var frames = 0

	defer out.Finish()

	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"reader context cancelled",
			)
			return readerStats(runID, frames, startTime)

		default:
			item, ok := src.ReadNext()
			if !ok {
				// End of stream or read error. Either way stop reading
				// and let already queued frames drain.
				return readerStats(runID, frames, startTime)
			}

			if !out.Enqueue(item) {
				// Queue was finished under cancellation
				if dropFn != nil {
					dropFn(item)
				}
				return readerStats(runID, frames, startTime)
			}

			frames++
		}
	}
}

func readerStats(runID string, frames int, startTime int64) model.ReaderStats {
	uptime := time.Now().Unix() - startTime
	fps := frames
	if uptime > 0 {
		fps = int(float64(frames) / float64(uptime))
	}

	return model.ReaderStats{
		RunID:     runID,
		Name:      "reader",
		Frames:    frames,
		Uptime:    uptime,
		FPS:       fps,
		Timestamp: time.Now().Unix(),
	}
}
