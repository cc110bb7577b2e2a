package model

import (
	"fmt"
	"image"
	"runtime/debug"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func GenError(proc string, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

type Detection struct {
	Label            string          `json:"label"`
	ObjectConfidence float32         `json:"objectConfidence"`
	ClassConfidence  float32         `json:"classConfidence"`
	Confidence       float32         `json:"confidence"`
	Rect             image.Rectangle `json:"rect"`
}

// StreamProperties are read from the source at open time and carried
// over to the sink so the output stream matches the input.
type StreamProperties struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`
	Codec  string  `json:"codec"`
}

type ReaderStats struct {
	RunID     string `json:"runId"`
	Name      string `json:"name"`
	Frames    int    `json:"frames"`
	Uptime    int64  `json:"uptime"`
	FPS       int    `json:"fps"`
	Timestamp int64  `json:"timestamp"`
}

type DetectorStats struct {
	RunID       string  `json:"runId"`
	Name        string  `json:"name"`
	Frames      int     `json:"frames"`
	Errors      int     `json:"errors"`
	Uptime      int64   `json:"uptime"`
	FPS         int     `json:"fps"`
	AvgProcTime float64 `json:"avgProcTime"`
	Timestamp   int64   `json:"timestamp"`
}

type WriterStats struct {
	RunID     string `json:"runId"`
	Name      string `json:"name"`
	Frames    int    `json:"frames"`
	Errors    int    `json:"errors"`
	Uptime    int64  `json:"uptime"`
	FPS       int    `json:"fps"`
	Timestamp int64  `json:"timestamp"`
}

type PipelineStats struct {
	RunID         string `json:"runId"`
	FramesRead    int    `json:"framesRead"`
	FramesWritten int    `json:"framesWritten"`
	Uptime        int64  `json:"uptime"`
	Timestamp     int64  `json:"timestamp"`
}
