package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/samber/lo"

	"pillbuddy-backend/internal/models"
	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/observability/metrics"
)

// ProviderLoader constructs the detector and classifier. It runs once,
// on first use; the loaded providers are shared read-only afterwards.
type ProviderLoader func(ctx context.Context) (Detector, Classifier, error)

// Identifier runs the detect-crop-classify pipeline and returns the
// best pill candidate for an image.
type Identifier struct {
	load ProviderLoader

	once       sync.Once
	detector   Detector
	classifier Classifier
	loadErr    error

	metrics *metrics.Metrics
}

// NewIdentifier creates an Identifier whose providers are loaded lazily
// via the given loader on the first Identify call.
func NewIdentifier(load ProviderLoader) *Identifier {
	return &Identifier{
		load:    load,
		metrics: metrics.DefaultMetrics,
	}
}

// Identify returns the highest-confidence pill candidate for the image,
// or nil when nothing was identified. Provider failures never escape:
// a whole-image failure yields nil and a per-crop failure skips that
// crop, with the cause logged and counted.
func (i *Identifier) Identify(ctx context.Context, img []byte) *models.PillCandidate {
	logger := logging.WithComponent("vision")
	start := time.Now()

	candidate, err := i.identify(ctx, img)
	i.metrics.VisionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn().Err(err).Msg("Identification produced no result")
		return nil
	}
	return candidate
}

func (i *Identifier) init(ctx context.Context) error {
	i.once.Do(func() {
		i.metrics.VisionInitTotal.Inc()
		i.detector, i.classifier, i.loadErr = i.load(ctx)
		if i.loadErr != nil {
			i.metrics.VisionInitErrors.Inc()
		}
	})
	return i.loadErr
}

func (i *Identifier) identify(ctx context.Context, img []byte) (*models.PillCandidate, error) {
	if err := i.init(ctx); err != nil {
		return nil, fmt.Errorf("load vision providers: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	regions, err := i.detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("no pill region detected")
	}

	logger := logging.WithComponent("vision")
	var candidates []models.PillCandidate
	for _, region := range regions {
		crop, err := encodeCrop(decoded, region)
		if err != nil {
			i.metrics.CropsSkipped.Inc()
			logger.Warn().Err(err).Msg("Skipping crop: encode failed")
			continue
		}

		label, err := i.classifier.Classify(ctx, crop)
		if err != nil {
			i.metrics.CropsSkipped.Inc()
			logger.Warn().Err(err).Msg("Skipping crop: classification failed")
			continue
		}

		i.metrics.CropsClassified.Inc()
		candidates = append(candidates, models.PillCandidate{
			Label:      label.Name,
			Confidence: label.Confidence,
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no crop classified")
	}

	// MaxBy keeps the first seen on ties.
	best := lo.MaxBy(candidates, func(a, b models.PillCandidate) bool {
		return a.Confidence > b.Confidence
	})

	logger.Info().
		Str("label", best.Label).
		Float64("confidence", best.Confidence).
		Int("candidates", len(candidates)).
		Msg("Pill identified")
	return &best, nil
}

// encodeCrop cuts the region out of the decoded image and re-encodes it
// losslessly for the classifier.
func encodeCrop(img image.Image, region Region) ([]byte, error) {
	rect := image.Rect(region.X0, region.Y0, region.X1, region.Y1)
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop region %v", rect)
	}

	crop := imaging.Crop(img, rect)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, crop, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
