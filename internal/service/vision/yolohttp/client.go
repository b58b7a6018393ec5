// Package yolohttp adapts external model-inference HTTP services to the
// vision provider interfaces. The detector and classifier are YOLO
// models served by a separate inference process.
package yolohttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"pillbuddy-backend/internal/service/vision"
)

// Config holds inference service endpoints and limits.
type Config struct {
	DetectorURL   string
	ClassifierURL string
	MaxDetections int
	Timeout       time.Duration
}

// Detector implements vision.Detector against the detection endpoint.
type Detector struct {
	url           string
	maxDetections int
	http          *http.Client
}

// Classifier implements vision.Classifier against the classification
// endpoint.
type Classifier struct {
	url  string
	http *http.Client
}

var (
	_ vision.Detector   = (*Detector)(nil)
	_ vision.Classifier = (*Classifier)(nil)
)

// New creates the detector and classifier adapters sharing one HTTP
// client with a bounded timeout.
func New(cfg Config) (*Detector, *Classifier) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxDet := cfg.MaxDetections
	if maxDet <= 0 {
		maxDet = 1
	}
	client := &http.Client{Timeout: timeout}

	return &Detector{url: cfg.DetectorURL, maxDetections: maxDet, http: client},
		&Classifier{url: cfg.ClassifierURL, http: client}
}

// Detect posts the image to the detection service and returns the
// regions found, capped server-side at the configured maximum.
func (d *Detector) Detect(ctx context.Context, img []byte) ([]vision.Region, error) {
	fields := map[string]string{"max_det": strconv.Itoa(d.maxDetections)}

	var result struct {
		Detections []vision.Region `json:"detections"`
	}
	if err := postImage(ctx, d.http, d.url, img, fields, &result); err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	return result.Detections, nil
}

// Classify posts a crop to the classification service and returns the
// top-1 label.
func (c *Classifier) Classify(ctx context.Context, crop []byte) (vision.Label, error) {
	var result vision.Label
	if err := postImage(ctx, c.http, c.url, crop, nil, &result); err != nil {
		return vision.Label{}, fmt.Errorf("classifier: %w", err)
	}
	if result.Name == "" {
		return vision.Label{}, fmt.Errorf("classifier: empty label in response")
	}
	return result, nil
}

// postImage sends the image as a multipart form and decodes the JSON
// response into out.
func postImage(ctx context.Context, client *http.Client, url string, img []byte, fields map[string]string, out any) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.webp")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(img)); err != nil {
		return fmt.Errorf("copy image data: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CheckHealth verifies the inference service is reachable.
func (d *Detector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
