package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register gif
	"image/jpeg"
	_ "image/png" // register png
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp

	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
)

const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 80
	// DefaultMaxPixels bounds the decoded canvas; a few hundred KB of
	// compressed PNG can otherwise declare gigabytes of pixels.
	DefaultMaxPixels = 50_000_000
)

// Normalizer downsamples uploads into compact JPEG data URLs.
type Normalizer struct {
	MaxDimension int
	Quality      int
	MaxPixels    int
}

func NewNormalizer() *Normalizer {
	return &Normalizer{MaxDimension: DefaultMaxDimension, Quality: DefaultQuality, MaxPixels: DefaultMaxPixels}
}

// Normalize decodes r, fits it inside MaxDimension x MaxDimension and
// re-encodes it as JPEG.
func (n *Normalizer) Normalize(r io.Reader) (samples.Normalized, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return samples.Normalized{}, &domai.DecodeError{Err: err}
	}

	// header first: refuse oversized canvases before allocating them
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return samples.Normalized{}, &domai.DecodeError{Err: err}
	}
	budget := n.MaxPixels
	if budget <= 0 {
		budget = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(budget) {
		return samples.Normalized{}, &domai.DecodeError{
			Err: fmt.Errorf("image is %dx%d, over the %d pixel limit", cfg.Width, cfg.Height, budget),
		}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return samples.Normalized{}, &domai.DecodeError{Err: err}
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return samples.Normalized{}, &domai.DecodeError{Err: errors.New("image has no pixels")}
	}

	limit := n.MaxDimension
	if limit <= 0 {
		limit = DefaultMaxDimension
	}
	quality := n.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	w, h := Fit(b.Dx(), b.Dy(), limit)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return samples.Normalized{}, &domai.DecodeError{Err: err}
	}
	return samples.Normalized{
		Preview: DataURL("image/jpeg", buf.Bytes()),
		Width:   w,
		Height:  h,
	}, nil
}

// Fit scales width and height so neither exceeds limit. Only the axis that is
// both the larger one and over the limit drives the scale.
func Fit(width, height, limit int) (int, int) {
	if width > height {
		if width > limit {
			height = height * limit / width
			width = limit
		}
	} else if height > limit {
		width = width * limit / height
		height = limit
	}
	return max(width, 1), max(height, 1)
}

// DataURL inlines data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
