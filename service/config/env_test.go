package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	svc := NewEnv()

	if svc.GetVideoInputPath() != "./videos/input.mp4" {
		t.Errorf("Unexpected input path: %s", svc.GetVideoInputPath())
	}
	if svc.IsDeviceSource() {
		t.Error("Expected a file source by default")
	}
	if svc.IsGPU() {
		t.Error("Expected CPU processing by default")
	}
	if svc.GetMaxShutdownTime() <= 0 {
		t.Errorf("Unexpected shutdown time: %d", svc.GetMaxShutdownTime())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIDEO_INPUT_PATH", "")
	t.Setenv("VIDEO_DEVICE", "2")
	t.Setenv("IS_GPU", "true")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.8")

	svc := NewEnv()

	if !svc.IsDeviceSource() {
		t.Error("Expected a device source with an empty input path")
	}
	if svc.GetVideoDevice() != 2 {
		t.Errorf("Expected device 2, got %d", svc.GetVideoDevice())
	}
	if !svc.IsGPU() {
		t.Error("Expected GPU processing")
	}
	if svc.GetConfidenceThreshold() != 0.8 {
		t.Errorf("Expected threshold 0.8, got %f", svc.GetConfidenceThreshold())
	}
}

func TestMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("VIDEO_DEVICE", "not-a-number")
	t.Setenv("IS_GPU", "maybe")

	svc := NewEnv()

	if svc.GetVideoDevice() != 0 {
		t.Errorf("Expected default device 0, got %d", svc.GetVideoDevice())
	}
	if svc.IsGPU() {
		t.Error("Expected default CPU processing")
	}
}
