package media

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"math"
	"time"

	"go-network-backend/pkg/blob"
	"go-network-backend/pkg/metrics"

	"golang.org/x/image/draw"
)

const (
	// OutputExt is the extension of every derived file.
	OutputExt   = ".jpg"
	jpegQuality = 85

	// MaxSourcePixels bounds the decoded size of an upload. The byte cap alone
	// does not: a few hundred KB of PNG can declare a 20000x20000 canvas.
	MaxSourcePixels = 40_000_000
)

var ErrProcessing = errors.New("image processing failed")

// ProcessingError wraps a decode or encode failure on a file that passed validation.
type ProcessingError struct {
	Variant string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("Image processing failed: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}

// Variant is a named bounding box.
type Variant struct {
	Name   string
	Width  int
	Height int
}

// VariantSpec lists the variants derived from one upload; "main" is the one
// profiles point at.
type VariantSpec []Variant

var (
	AvatarVariants = VariantSpec{
		{Name: "main", Width: 400, Height: 400},
		{Name: "thumb", Width: 100, Height: 100},
	}
	CoverVariants = VariantSpec{
		{Name: "main", Width: 1200, Height: 300},
		{Name: "thumb", Width: 400, Height: 100},
	}
)

// Derived is one written variant.
type Derived struct {
	Variant  string
	Filename string
	Width    int
	Height   int
}

type Pipeline struct {
	store *blob.Store
}

func NewPipeline(store *blob.Store) *Pipeline {
	return &Pipeline{store: store}
}

// Derive writes one re-encoded file per variant next to sourceName and returns
// them keyed by variant name. On any failure the variants written so far are
// removed; the source itself is left for the caller to dispose of.
func (p *Pipeline) Derive(sourceName string, spec VariantSpec) (map[string]Derived, error) {
	out := make(map[string]Derived, len(spec))

	for _, v := range spec {
		d, err := p.deriveOne(sourceName, v)
		if err != nil {
			for _, written := range out {
				_ = p.store.Remove(written.Filename)
			}
			return nil, &ProcessingError{Variant: v.Name, Err: err}
		}
		out[v.Name] = d
	}
	return out, nil
}

// deriveOne decodes the source again for every variant; payloads are small enough
// that reuse is not worth the memory.
func (p *Pipeline) deriveOne(sourceName string, v Variant) (Derived, error) {
	start := time.Now()
	defer func() {
		metrics.MediaDerivationSeconds.WithLabelValues(v.Name).Observe(time.Since(start).Seconds())
	}()

	src, err := p.store.Open(sourceName)
	if err != nil {
		return Derived{}, err
	}
	img, err := decodeBounded(src)
	src.Close()
	if err != nil {
		return Derived{}, err
	}

	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), v.Width, v.Height)
	if w == 0 || h == 0 {
		return Derived{}, errors.New("decode: empty image")
	}

	// JPEG has no alpha; flatten onto white.
	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(resized, resized.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	name := VariantFilename(sourceName, v.Name)
	err = p.store.Write(name, func(w io.Writer) error {
		return jpeg.Encode(w, resized, &jpeg.Options{Quality: jpegQuality})
	})
	if err != nil {
		return Derived{}, fmt.Errorf("encode: %w", err)
	}

	return Derived{Variant: v.Name, Filename: name, Width: w, Height: h}, nil
}

// decodeBounded reads the header first and refuses canvases over MaxSourcePixels
// before anything is allocated for the pixels.
func decodeBounded(src io.ReadSeeker) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("decode: empty image")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("decode: %dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, MaxSourcePixels)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// FitWithin shrinks (w, h) to fit inside (maxW, maxH) preserving aspect ratio.
// Images already inside the box are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	nw = min(max(nw, 1), maxW)
	nh = min(max(nh, 1), maxH)
	return nw, nh
}
