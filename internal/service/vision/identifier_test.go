package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"pillbuddy-backend/internal/models"
)

// fakeDetector implements Detector for testing.
type fakeDetector struct {
	regions []Region
	err     error
}

func (d *fakeDetector) Detect(_ context.Context, _ []byte) ([]Region, error) {
	return d.regions, d.err
}

// fakeClassifier implements Classifier for testing.
type fakeClassifier struct {
	mu     sync.Mutex
	labels []Label
	errs   []error
	call   int
}

func (c *fakeClassifier) Classify(_ context.Context, _ []byte) (Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.call
	c.call++
	if i < len(c.errs) && c.errs[i] != nil {
		return Label{}, c.errs[i]
	}
	if i < len(c.labels) {
		return c.labels[i], nil
	}
	return Label{}, errors.New("no scripted label")
}

func staticLoader(d Detector, c Classifier) ProviderLoader {
	return func(ctx context.Context) (Detector, Classifier, error) {
		return d, c, nil
	}
}

// testImage returns a decodable 64x64 PNG.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 16; y < 48; y++ {
		for x := 16; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func centerRegion() Region {
	return Region{X0: 8, Y0: 8, X1: 56, Y1: 56, Confidence: 0.9}
}

func TestIdentifier_Identify(t *testing.T) {
	det := &fakeDetector{regions: []Region{centerRegion()}}
	cls := &fakeClassifier{labels: []Label{{Name: "K001_ASPIRIN_500MG", Confidence: 0.97}}}
	id := NewIdentifier(staticLoader(det, cls))

	got := id.Identify(context.Background(), testImage(t))
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if got.Label != "K001_ASPIRIN_500MG" {
		t.Errorf("expected label 'K001_ASPIRIN_500MG', got %s", got.Label)
	}
	if got.Confidence != 0.97 {
		t.Errorf("expected confidence 0.97, got %f", got.Confidence)
	}
}

func TestIdentifier_NoRegions_IsMiss(t *testing.T) {
	det := &fakeDetector{regions: nil}
	cls := &fakeClassifier{labels: []Label{{Name: "SHOULD_NOT_RUN", Confidence: 1}}}
	id := NewIdentifier(staticLoader(det, cls))

	if got := id.Identify(context.Background(), testImage(t)); got != nil {
		t.Errorf("expected nil for zero regions, got %+v", got)
	}
	if cls.call != 0 {
		t.Errorf("classifier must not run without regions, ran %d times", cls.call)
	}
}

func TestIdentifier_UndecodableImage_IsMiss(t *testing.T) {
	det := &fakeDetector{regions: []Region{centerRegion()}}
	cls := &fakeClassifier{labels: []Label{{Name: "X", Confidence: 1}}}
	id := NewIdentifier(staticLoader(det, cls))

	if got := id.Identify(context.Background(), []byte("not an image")); got != nil {
		t.Errorf("expected nil for undecodable bytes, got %+v", got)
	}
}

func TestIdentifier_DetectorError_IsMiss(t *testing.T) {
	det := &fakeDetector{err: errors.New("inference service down")}
	id := NewIdentifier(staticLoader(det, &fakeClassifier{}))

	if got := id.Identify(context.Background(), testImage(t)); got != nil {
		t.Errorf("expected nil on detector error, got %+v", got)
	}
}

func TestIdentifier_CropFailure_SkipsCrop(t *testing.T) {
	det := &fakeDetector{regions: []Region{
		{X0: 8, Y0: 8, X1: 32, Y1: 32, Confidence: 0.8},
		{X0: 32, Y0: 32, X1: 56, Y1: 56, Confidence: 0.7},
	}}
	cls := &fakeClassifier{
		errs:   []error{errors.New("bad crop"), nil},
		labels: []Label{{}, {Name: "K002_IBUPROFEN_200MG", Confidence: 0.85}},
	}
	id := NewIdentifier(staticLoader(det, cls))

	got := id.Identify(context.Background(), testImage(t))
	if got == nil {
		t.Fatal("expected surviving crop to produce a candidate")
	}
	if got.Label != "K002_IBUPROFEN_200MG" {
		t.Errorf("expected 'K002_IBUPROFEN_200MG', got %s", got.Label)
	}
}

func TestIdentifier_AllCropsFail_IsMiss(t *testing.T) {
	det := &fakeDetector{regions: []Region{centerRegion()}}
	cls := &fakeClassifier{errs: []error{errors.New("bad crop")}}
	id := NewIdentifier(staticLoader(det, cls))

	if got := id.Identify(context.Background(), testImage(t)); got != nil {
		t.Errorf("expected nil when every crop fails, got %+v", got)
	}
}

func TestIdentifier_SelectsHighestConfidence(t *testing.T) {
	det := &fakeDetector{regions: []Region{
		{X0: 8, Y0: 8, X1: 32, Y1: 32, Confidence: 0.8},
		{X0: 32, Y0: 32, X1: 56, Y1: 56, Confidence: 0.7},
		{X0: 8, Y0: 32, X1: 32, Y1: 56, Confidence: 0.6},
	}}
	cls := &fakeClassifier{labels: []Label{
		{Name: "LOW", Confidence: 0.4},
		{Name: "HIGH", Confidence: 0.9},
		{Name: "TIE", Confidence: 0.9},
	}}
	id := NewIdentifier(staticLoader(det, cls))

	got := id.Identify(context.Background(), testImage(t))
	if got == nil {
		t.Fatal("expected a candidate")
	}
	// Ties keep the first-seen candidate.
	if got.Label != "HIGH" {
		t.Errorf("expected 'HIGH', got %s", got.Label)
	}
}

func TestIdentifier_InitOnce_Concurrent(t *testing.T) {
	var loads int32
	loader := func(ctx context.Context) (Detector, Classifier, error) {
		atomic.AddInt32(&loads, 1)
		return &fakeDetector{regions: []Region{centerRegion()}},
			&fakeClassifier{labels: []Label{
				{Name: "A", Confidence: 0.9}, {Name: "A", Confidence: 0.9},
				{Name: "A", Confidence: 0.9}, {Name: "A", Confidence: 0.9},
			}},
			nil
	}
	id := NewIdentifier(loader)
	img := testImage(t)

	var wg sync.WaitGroup
	results := make([]*models.PillCandidate, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = id.Identify(context.Background(), img)
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Errorf("expected exactly 1 provider load, got %d", got)
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("call %d returned nil", i)
		}
	}
}

func TestIdentifier_LoaderFailure_IsMissAndSticky(t *testing.T) {
	var loads int32
	loader := func(ctx context.Context) (Detector, Classifier, error) {
		atomic.AddInt32(&loads, 1)
		return nil, nil, errors.New("models unavailable")
	}
	id := NewIdentifier(loader)
	img := testImage(t)

	if got := id.Identify(context.Background(), img); got != nil {
		t.Errorf("expected nil on load failure, got %+v", got)
	}
	if got := id.Identify(context.Background(), img); got != nil {
		t.Errorf("expected nil on repeated call, got %+v", got)
	}
	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Errorf("expected a single load attempt, got %d", got)
	}
}
