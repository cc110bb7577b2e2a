package detector

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vp-go/model"
	"github.com/khaledhikmat/vp-go/service/config"
	"github.com/khaledhikmat/vp-go/service/lgr"
)

// Global logger instance
var detectionLogger = &lumberjack.Logger{
	Filename:   "detections.log",
	MaxSize:    10, // MB
	MaxBackups: 5,
	MaxAge:     7,    // days
	Compress:   true, // compress old logs
}

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

type yoloService struct {
	CfgSvc config.IService

	// WARNING: net is not thread-safe. The pipeline invokes Transform
	// from a single processor stage only.
	net    gocv.Net
	labels []string
}

func NewYolo(cfgsvc config.IService) (IService, error) {
	modelPath := cfgsvc.GetModelPath()
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no yolo model exists at %s", modelPath)
	}

	labels, err := loadLabels(cfgsvc.GetLabelsPath())
	if err != nil {
		return nil, fmt.Errorf("error loading labels: %w", err)
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("error reading yolo model %s", modelPath)
	}

	backend := gocv.NetBackendDefault
	target := gocv.NetTargetCPU
	if cfgsvc.IsGPU() {
		backend = gocv.NetBackendCUDA
		target = gocv.NetTargetCUDA
	}

	if err := net.SetPreferableBackend(backend); err != nil {
		net.Close()
		return nil, fmt.Errorf("error setting backend: %w", err)
	}

	if err := net.SetPreferableTarget(target); err != nil {
		net.Close()
		return nil, fmt.Errorf("error setting target: %w", err)
	}

	lgr.Logger.Info(
		"yolo detector initialized...",
		slog.String("model", modelPath),
		slog.Int("labels", len(labels)),
		slog.Bool("gpu", cfgsvc.IsGPU()),
		slog.String("openCV", gocv.Version()),
	)

	return &yoloService{
		CfgSvc: cfgsvc,
		net:    net,
		labels: labels,
	}, nil
}

func (svc *yoloService) Transform(img gocv.Mat) (gocv.Mat, error) {
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(640, 640), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	svc.net.SetInput(blob, "")

	output := svc.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		// Unexpected model output. Hand the frame through unannotated.
		lgr.Logger.Warn(
			"unexpected DNN output dims",
			slog.Any("dims", dims),
		)
		return img, nil
	}

	reshaped := output.Reshape(1, dims[1])
	if reshaped.Empty() || reshaped.Rows() == 0 || reshaped.Cols() < 5 {
		reshaped.Close()
		return img, nil
	}
	defer reshaped.Close()

	var detections []model.Detection
	for i := 0; i < reshaped.Rows(); i++ {
		row := reshaped.RowRange(i, i+1)
		data, okErr := row.DataPtrFloat32()
		row.Close()

		if okErr != nil || data == nil || len(data) < 5 {
			continue
		}

		if data[4] < svc.CfgSvc.GetObjectConfidenceThreshold() {
			continue
		}

		dets := extractDetections(img, svc.labels, data,
			svc.CfgSvc.GetConfidenceThreshold(),
			svc.CfgSvc.GetObjectConfidenceThreshold())
		detections = append(detections, dets...)
	}

	for _, det := range detections {
		gocv.Rectangle(&img, det.Rect, boxColor, 2)
		gocv.PutText(&img,
			fmt.Sprintf("%s %.2f", det.Label, det.Confidence),
			image.Pt(det.Rect.Min.X, det.Rect.Min.Y-6),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	if svc.CfgSvc.IsDetectionLogging() && len(detections) > 0 {
		logDetections(detections)
	}

	return img, nil
}

func (svc *yoloService) Close() error {
	return svc.net.Close()
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

func extractDetections(frame gocv.Mat, labels []string, data []float32, confidenceThresh float32, objectConfidenceThresh float32) []model.Detection {
	detections := []model.Detection{}

	objectConfidence := data[4] // objectness
	classScores := data[5:]

	if len(classScores) != len(labels) {
		return detections
	}

	classID := -1
	classConfidence := float32(0.0)
	for j, score := range classScores {
		if score > classConfidence {
			classConfidence = score
			classID = j
		}
	}

	finalConf := objectConfidence * classConfidence

	// Ignore if the object and class confidences are low
	if classID == -1 ||
		objectConfidence < objectConfidenceThresh ||
		finalConf < confidenceThresh {
		return detections
	}

	cx := data[0] * float32(frame.Cols())
	cy := data[1] * float32(frame.Rows())
	w := data[2] * float32(frame.Cols())
	h := data[3] * float32(frame.Rows())
	x := int(cx - w/2)
	y := int(cy - h/2)
	rect := image.Rect(x, y, x+int(w), y+int(h))

	detections = append(detections, model.Detection{
		Label:            labels[classID],
		ObjectConfidence: objectConfidence, // Is there anything here?
		ClassConfidence:  classConfidence,  // what class is likely here?
		Confidence:       finalConf,
		Rect:             rect,
	})

	return detections
}

func logDetections(detections []model.Detection) {
	entry := map[string]interface{}{
		"time":       time.Now().Format(time.RFC3339),
		"detections": detections,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		lgr.Logger.Error(
			"error marshaling detections",
			slog.Any("error", err),
		)
		return
	}

	if _, err := detectionLogger.Write(append(jsonData, '\n')); err != nil {
		lgr.Logger.Error(
			"error writing to detection log file",
			slog.Any("error", err),
		)
	}
}
