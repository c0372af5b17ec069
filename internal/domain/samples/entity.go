package samples

import "io"

const (
	MaxFiles     = 3
	MaxFileBytes = 20 * 1024 * 1024
)

// SampleID identifier type
type SampleID string

// Sample is one accepted upload with its normalized preview.
type Sample struct {
	ID          SampleID `json:"id"`
	Name        string   `json:"name"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Preview     string   `json:"preview"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
}

// File is an upload candidate as received from the browser.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Normalized is the output of the image normalizer.
type Normalized struct {
	Preview string
	Width   int
	Height  int
}
