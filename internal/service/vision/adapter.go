// Package vision identifies a pill in a photograph with a two-stage
// detect-then-classify pipeline.
package vision

import "context"

// Region is one detected pill bounding box in source-image pixels.
type Region struct {
	X0         int     `json:"x0"`
	Y0         int     `json:"y0"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	Confidence float64 `json:"confidence"`
}

// Label is a top-1 classification of a pill crop.
type Label struct {
	Name       string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Detector locates pill regions in an image. Implementations are asked
// for at most one region per image, but callers tolerate more.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Region, error)
}

// Classifier assigns an identity label to a cropped pill image.
type Classifier interface {
	Classify(ctx context.Context, crop []byte) (Label, error)
}
