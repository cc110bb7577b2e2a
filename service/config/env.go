package config

import (
	"os"
	"strconv"
)

type envService struct {
}

func NewEnv() IService {
	return &envService{}
}

func (svc *envService) GetVideoInputPath() string {
	// Empty means capture from a device instead of a file
	return getString("VIDEO_INPUT_PATH", "./videos/input.mp4")
}

func (svc *envService) GetVideoDevice() int {
	return getInt("VIDEO_DEVICE", 0)
}

func (svc *envService) IsDeviceSource() bool {
	return svc.GetVideoInputPath() == ""
}

func (svc *envService) GetVideoOutputPath() string {
	return getString("VIDEO_OUTPUT_PATH", "./videos/output.mp4")
}

func (svc *envService) GetModelPath() string {
	return getString("MODEL_PATH", "./models/yolov5s.onnx")
}

func (svc *envService) GetLabelsPath() string {
	return getString("LABELS_PATH", "./models/coco.names")
}

func (svc *envService) IsGPU() bool {
	return getBool("IS_GPU", false)
}

func (svc *envService) GetConfidenceThreshold() float32 {
	return getFloat32("CONFIDENCE_THRESHOLD", 0.45)
}

func (svc *envService) GetObjectConfidenceThreshold() float32 {
	return getFloat32("OBJECT_CONFIDENCE_THRESHOLD", 0.5)
}

func (svc *envService) IsDetectionLogging() bool {
	return getBool("DETECTION_LOGGING", false)
}

func (svc *envService) GetStatsFolder() string {
	return getString("STATS_FOLDER", "./stats")
}

func (svc *envService) GetMaxShutdownTime() int {
	// Seconds to allow go routines to drain on shutdown
	return getInt("MAX_SHUTDOWN_TIME", 5)
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat32(key string, def float32) float32 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
