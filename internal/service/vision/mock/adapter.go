// Package mock provides scripted vision providers for testing and local
// development without a model-inference service.
package mock

import (
	"context"
	"sync"

	"pillbuddy-backend/internal/service/vision"
)

// Detector implements vision.Detector with fixed regions.
type Detector struct {
	mu      sync.Mutex
	regions []vision.Region
	err     error
	calls   int
}

// Classifier implements vision.Classifier with a fixed label.
type Classifier struct {
	mu    sync.Mutex
	label vision.Label
	err   error
	calls int
}

var (
	_ vision.Detector   = (*Detector)(nil)
	_ vision.Classifier = (*Classifier)(nil)
)

// NewDetector returns a detector that reports one centered region.
func NewDetector() *Detector {
	return &Detector{
		regions: []vision.Region{{X0: 8, Y0: 8, X1: 56, Y1: 56, Confidence: 0.92}},
	}
}

// NewClassifier returns a classifier with a fixed demo label.
func NewClassifier() *Classifier {
	return &Classifier{
		label: vision.Label{Name: "K001_ASPIRIN_500MG", Confidence: 0.97},
	}
}

// SetRegions overrides the scripted regions.
func (d *Detector) SetRegions(regions []vision.Region) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regions = regions
}

// SetError makes every Detect call fail.
func (d *Detector) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Calls reports how many Detect calls were received.
func (d *Detector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Detect returns the scripted regions.
func (d *Detector) Detect(_ context.Context, _ []byte) ([]vision.Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return append([]vision.Region{}, d.regions...), nil
}

// SetLabel overrides the scripted label.
func (c *Classifier) SetLabel(label vision.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = label
}

// SetError makes every Classify call fail.
func (c *Classifier) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls reports how many Classify calls were received.
func (c *Classifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Classify returns the scripted label.
func (c *Classifier) Classify(_ context.Context, _ []byte) (vision.Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return vision.Label{}, c.err
	}
	return c.label, nil
}
