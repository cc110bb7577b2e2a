package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

// Run wires the three pipeline stages together: it opens the source and
// the sink (both fatal before any go routine starts), builds the two
// hand-off queues, starts the reader, processor and writer concurrently
// and blocks until all three have drained naturally. External resources
// are released only after the join.
//
// Cancelling the context finishes both queues so every blocked stage
// unblocks and exits; dropFn releases frames that never reach the next
// stage (pass nil when items need no release).
func Run[T any](canxCtx context.Context, src Source[T], transformer Transformer[T], snk Sink[T], errorStream, statsStream chan interface{}, dropFn func(T)) (model.PipelineStats, error) {
	runID := uuid.NewString()
	startTime := time.Now().Unix()

	lgr.Logger.Info(
		"pipeline starting....",
		slog.String("runID", runID),
	)

	if err := src.Open(); err != nil {
		return model.PipelineStats{}, fmt.Errorf("error opening source: %w", err)
	}

	if err := snk.Open(); err != nil {
		src.Close()
		return model.PipelineStats{}, fmt.Errorf("error opening sink: %w", err)
	}

	// Queues first, then all three stages
	frameQueue := NewQueue[T]()
	processedQueue := NewQueue[Processed[T]]()

	var readerResult model.ReaderStats
	var processorResult model.DetectorStats
	var writerResult model.WriterStats

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		readerResult = reader(canxCtx, runID, src, frameQueue, dropFn)
		if statsStream != nil {
			statsStream <- readerResult
		}
	}()

	go func() {
		defer wg.Done()
		processorResult = processor(canxCtx, runID, transformer, frameQueue, processedQueue, errorStream, dropFn)
		if statsStream != nil {
			statsStream <- processorResult
		}
	}()

	go func() {
		defer wg.Done()
		writerResult = writer(canxCtx, runID, snk, processedQueue, errorStream)
		if statsStream != nil {
			statsStream <- writerResult
		}
	}()

	// Unblock all waiters if the context is cancelled mid stream
	done := make(chan struct{})
	go func() {
		select {
		case <-canxCtx.Done():
			frameQueue.Finish()
			processedQueue.Finish()
		case <-done:
		}
	}()

	wg.Wait()
	close(done)

	// On cancellation frames may be stranded in the queues
	for {
		item, ok := frameQueue.Dequeue()
		if !ok {
			break
		}
		if dropFn != nil {
			dropFn(item)
		}
	}
	for {
		processed, ok := processedQueue.Dequeue()
		if !ok {
			break
		}
		if dropFn != nil {
			dropFn(processed.Item)
		}
	}

	src.Close()
	snk.Close()

	stats := model.PipelineStats{
		RunID:         runID,
		FramesRead:    readerResult.Frames,
		FramesWritten: writerResult.Frames,
		Uptime:        time.Now().Unix() - startTime,
		Timestamp:     time.Now().Unix(),
	}

	if statsStream != nil {
		statsStream <- stats
	}

	lgr.Logger.Info(
		"pipeline completed",
		slog.String("runID", runID),
		slog.Int("framesRead", stats.FramesRead),
		slog.Int("framesProcessed", processorResult.Frames),
		slog.Int("framesWritten", stats.FramesWritten),
	)

	return stats, nil
}
