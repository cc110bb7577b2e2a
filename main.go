package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/pipeline"
	"github.com/khaledhikmat/vp-go/service/config"
	"github.com/khaledhikmat/vp-go/service/data"
	"github.com/khaledhikmat/vp-go/service/detector"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

func main() {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info(
			"received kill signal",
			slog.Any("signal", sig),
		)
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		lgr.Logger.Info("loading env vars from .env file")
		err := godotenv.Load()
		if err != nil {
			lgr.Logger.Warn("error loading .env file", slog.Any("error", xerrors.New(err.Error())))
		}
	}

	// Create the services needed for the pipeline
	// Config service
	cfgSvc := config.NewEnv()
	// Data service
	dataSvc := data.NewFilesDB(cfgSvc)

	svcs := pipeline.ServicesFactory{
		CfgSvc:  cfgSvc,
		DataSvc: dataSvc,
	}

	// Detector service (swap NewYolo for NewPassThrough to bypass inference)
	detectorSvc, err := detector.NewYolo(cfgSvc)
	if err != nil {
		lgr.Logger.Error(
			"error creating detector",
			slog.Any("error", xerrors.New(err.Error())),
		)
		os.Exit(1)
	}
	defer detectorSvc.Close()

	// Create the error and stats streams
	errorStream := make(chan interface{})
	statsStream := make(chan interface{})

	// Create pipeline result
	pipelineResult := make(chan error)
	defer close(pipelineResult)

	// Start the pipeline
	go func() {
		_, err := pipeline.Video(canxCtx, svcs, detectorSvc, errorStream, statsStream)
		pipelineResult <- err
	}()

	failed := false

	// Wait for cancellation, pipeline completion, stats or errors
	for {
		select {
		case <-canxCtx.Done():
			lgr.Logger.Info(
				"video processor context cancelled",
			)
			goto resume

		case err := <-pipelineResult:
			if err != nil {
				failed = true
				lgr.Logger.Error(
					"video processor pipeline exited",
					slog.Any("error", xerrors.New(err.Error())),
				)
			}
			goto resume

		case e := <-errorStream:
			procError(dataSvc, e)

		case s := <-statsStream:
			procStats(dataSvc, s)
		}
	}

	// Wait in a non-blocking way for the shutdown period so the go routines
	// can report errors and stats as they are exiting
resume:
	// Cancel the context if not already cancelled
	if canxCtx.Err() == nil {
		// Force cancel the context
		canxFn()
	}

	lgr.Logger.Info(
		"video processor is waiting for all go routines to exit",
	)

	timer := time.NewTimer(time.Duration(cfgSvc.GetMaxShutdownTime()) * time.Second)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// Timer expired, proceed with shutdown
			lgr.Logger.Info(
				"video processor shutdown waiting period expired. Exiting now",
				slog.Duration("period", time.Duration(cfgSvc.GetMaxShutdownTime())*time.Second),
			)

			if failed {
				os.Exit(1)
			}

			return

		case err := <-pipelineResult:
			if err != nil {
				failed = true
				lgr.Logger.Error(
					"video processor pipeline exited",
					slog.Any("error", xerrors.New(err.Error())),
				)
			}

		case e := <-errorStream:
			procError(dataSvc, e)

		case s := <-statsStream:
			procStats(dataSvc, s)
		}
	}
}

func procStats(datasvc data.IService, stats interface{}) {
	switch stats := stats.(type) {
	case model.ReaderStats:
		procReaderStats(datasvc, stats)
	case model.DetectorStats:
		procDetectorStats(datasvc, stats)
	case model.WriterStats:
		procWriterStats(datasvc, stats)
	case model.PipelineStats:
		procPipelineStats(datasvc, stats)
	default:
		lgr.Logger.Error(
			"unknown stats type",
			slog.Any("stats", stats),
		)
	}
}

func procReaderStats(datasvc data.IService, stats model.ReaderStats) {
	err := datasvc.NewReaderStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store reader stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procDetectorStats(datasvc data.IService, stats model.DetectorStats) {
	err := datasvc.NewDetectorStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store detector stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procWriterStats(datasvc data.IService, stats model.WriterStats) {
	err := datasvc.NewWriterStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store writer stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procPipelineStats(datasvc data.IService, stats model.PipelineStats) {
	err := datasvc.NewPipelineStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store pipeline stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procError(datasvc data.IService, err interface{}) {
	errTemp := datasvc.NewError(err)
	if errTemp != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}
