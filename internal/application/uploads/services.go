package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
)

// Service owns one ordered, bounded sample collection per browser.
// It is safe for concurrent use; calls for the same owner are serialized.
type Service struct {
	Normalizer   samples.Normalizer
	Logger       *zap.Logger
	MaxFiles     int
	MaxFileBytes int64
	NewID        func() string

	mu         sync.Mutex
	workspaces map[string]*workspace
}

type workspace struct {
	mu      sync.Mutex
	samples []samples.Sample
}

func NewService(n samples.Normalizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Normalizer:   n,
		Logger:       logger,
		MaxFiles:     samples.MaxFiles,
		MaxFileBytes: samples.MaxFileBytes,
		NewID:        uuid.NewString,
		workspaces:   make(map[string]*workspace),
	}
}

func (s *Service) workspace(owner string) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaces == nil {
		s.workspaces = make(map[string]*workspace)
	}
	ws, ok := s.workspaces[owner]
	if !ok {
		ws = &workspace{}
		s.workspaces[owner] = ws
	}
	return ws
}

// AddFiles validates and normalizes files in order, filling at most the free
// slots. A failing file does not stop the batch; every rejection message is
// joined into the single returned ValidationError. Added samples are returned
// even when err is non-nil.
func (s *Service) AddFiles(ctx context.Context, owner string, files []samples.File) ([]samples.Sample, error) {
	ws := s.workspace(owner)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	available := s.MaxFiles - len(ws.samples)
	if available <= 0 {
		return nil, domai.NewValidationError("Maximum %d files allowed. Please remove existing files first.", s.MaxFiles)
	}
	if len(files) > available {
		files = files[:available]
	}

	var (
		added    []samples.Sample
		messages []string
	)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		sample, msg := s.accept(f)
		if msg != "" {
			messages = append(messages, msg)
			continue
		}
		added = append(added, sample)
	}

	// samples already normalized are kept even when the batch was cut short
	ws.samples = append(ws.samples, added...)
	if err := ctx.Err(); err != nil {
		return added, err
	}
	if len(messages) > 0 {
		return added, &domai.ValidationError{Message: strings.Join(messages, " ")}
	}
	return added, nil
}

// accept returns either a sample or the user-facing rejection message.
func (s *Service) accept(f samples.File) (samples.Sample, string) {
	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		sniffed, err := sniff(f)
		if err != nil {
			s.Logger.Warn("sniff upload failed", zap.String("file", f.Name), zap.Error(err))
		}
		contentType = sniffed
	}
	if !strings.HasPrefix(contentType, "image/") {
		return samples.Sample{}, fmt.Sprintf("%s is not a valid image file.", f.Name)
	}
	if f.Size > s.MaxFileBytes {
		return samples.Sample{}, fmt.Sprintf("%s is too large. Please select images under %dMB.", f.Name, s.MaxFileBytes/(1024*1024))
	}

	norm, err := s.normalize(f)
	if err != nil {
		s.Logger.Warn("process upload failed", zap.String("file", f.Name), zap.Error(err))
		return samples.Sample{}, fmt.Sprintf("Failed to process %s. The file might be corrupted or in an unsupported format.", f.Name)
	}

	return samples.Sample{
		ID:          samples.SampleID(s.NewID()),
		Name:        f.Name,
		ContentType: contentType,
		Size:        f.Size,
		Preview:     norm.Preview,
		Width:       norm.Width,
		Height:      norm.Height,
	}, ""
}

func (s *Service) normalize(f samples.File) (samples.Normalized, error) {
	if f.Open == nil {
		return samples.Normalized{}, &domai.DecodeError{Name: f.Name, Err: errors.New("no content")}
	}
	rc, err := f.Open()
	if err != nil {
		return samples.Normalized{}, &domai.DecodeError{Name: f.Name, Err: err}
	}
	defer rc.Close()
	// never read more than the size limit allows, whatever Size claimed
	return s.Normalizer.Normalize(io.LimitReader(rc, s.MaxFileBytes+1))
}

func sniff(f samples.File) (string, error) {
	if f.Open == nil {
		return "", errors.New("no content")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// RemoveFile drops the sample with the given id; unknown ids are ignored.
func (s *Service) RemoveFile(_ context.Context, owner string, id samples.SampleID) {
	ws := s.workspace(owner)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, smp := range ws.samples {
		if smp.ID == id {
			ws.samples = append(ws.samples[:i:i], ws.samples[i+1:]...)
			return
		}
	}
}

// List returns a copy of the owner's samples in upload order.
func (s *Service) List(owner string) []samples.Sample {
	ws := s.workspace(owner)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]samples.Sample, len(ws.samples))
	copy(out, ws.samples)
	return out
}

// Reset empties the owner's collection.
func (s *Service) Reset(owner string) {
	ws := s.workspace(owner)
	ws.mu.Lock()
	ws.samples = nil
	ws.mu.Unlock()
}
