package samples

import "io"

// Normalizer port (decode, downsample and re-encode one image)
type Normalizer interface {
	Normalize(r io.Reader) (Normalized, error)
}
