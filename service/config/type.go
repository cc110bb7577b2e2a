package config

type IService interface {
	GetVideoInputPath() string
	GetVideoDevice() int
	IsDeviceSource() bool
	GetVideoOutputPath() string
	GetModelPath() string
	GetLabelsPath() string
	IsGPU() bool
	GetConfidenceThreshold() float32
	GetObjectConfidenceThreshold() float32
	IsDetectionLogging() bool
	GetStatsFolder() string
	GetMaxShutdownTime() int
}
