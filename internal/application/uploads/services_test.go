package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
)

// stubNormalizer accepts any content except the bytes "broken".
type stubNormalizer struct{ calls int }

func (n *stubNormalizer) Normalize(r io.Reader) (samples.Normalized, error) {
	n.calls++
	data, err := io.ReadAll(r)
	if err != nil {
		return samples.Normalized{}, err
	}
	if string(data) == "broken" {
		return samples.Normalized{}, &domai.DecodeError{Err: errors.New("bad header")}
	}
	return samples.Normalized{Preview: "data:image/jpeg;base64,AAAA", Width: 10, Height: 10}, nil
}

func file(name, contentType string, size int64, content string) samples.File {
	return samples.File{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		},
	}
}

func newTestService() (*Service, *stubNormalizer) {
	n := &stubNormalizer{}
	svc := NewService(n, nil)
	seq := 0
	svc.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc, n
}

func TestAddFilesAcceptsValidImages(t *testing.T) {
	svc, _ := newTestService()

	added, err := svc.AddFiles(context.Background(), "b1", []samples.File{
		file("a.png", "image/png", 100, "ok"),
		file("b.jpg", "image/jpeg", 200, "ok"),
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, samples.SampleID("id-1"), added[0].ID)
	assert.Equal(t, "a.png", added[0].Name)
	assert.Equal(t, "b.jpg", svc.List("b1")[1].Name)
}

func TestAddFilesContinuesPastOversizedFile(t *testing.T) {
	svc, _ := newTestService()

	added, err := svc.AddFiles(context.Background(), "b1", []samples.File{
		file("good.png", "image/png", 1024, "ok"),
		file("huge.png", "image/png", samples.MaxFileBytes+1, "ok"),
	})
	require.Len(t, added, 1)
	assert.Equal(t, "good.png", added[0].Name)

	var vErr *domai.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "huge.png is too large. Please select images under 20MB.", vErr.Message)
	assert.Len(t, svc.List("b1"), 1)
}

func TestAddFilesAggregatesMessages(t *testing.T) {
	svc, _ := newTestService()

	added, err := svc.AddFiles(context.Background(), "b1", []samples.File{
		file("notes.txt", "text/plain", 10, "hello"),
		file("bad.png", "image/png", 10, "broken"),
		file("fine.png", "image/png", 10, "ok"),
	})
	require.Len(t, added, 1)
	require.Error(t, err)
	assert.Equal(t,
		"notes.txt is not a valid image file. Failed to process bad.png. The file might be corrupted or in an unsupported format.",
		err.Error())
}

func TestAddFilesNeverExceedsLimit(t *testing.T) {
	svc, n := newTestService()
	ctx := context.Background()

	added, err := svc.AddFiles(ctx, "b1", []samples.File{
		file("1.png", "image/png", 1, "ok"),
		file("2.png", "image/png", 1, "ok"),
		file("3.png", "image/png", 1, "ok"),
		file("4.png", "image/png", 1, "ok"),
	})
	require.NoError(t, err)
	assert.Len(t, added, 3)
	assert.Equal(t, 3, n.calls)

	before := svc.List("b1")
	added, err = svc.AddFiles(ctx, "b1", []samples.File{file("5.png", "image/png", 1, "ok")})
	assert.Empty(t, added)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum 3 files allowed")
	assert.Equal(t, before, svc.List("b1"))
	assert.Equal(t, 3, n.calls)
}

func TestAddFilesSniffsMissingContentType(t *testing.T) {
	svc, _ := newTestService()
	png := "\x89PNG\r\n\x1a\n" + "rest"

	added, err := svc.AddFiles(context.Background(), "b1", []samples.File{
		file("noext", "", 12, png),
		file("blob", "application/octet-stream", 5, "plain text"),
	})
	require.Len(t, added, 1)
	assert.Equal(t, "image/png", added[0].ContentType)
	require.Error(t, err)
	assert.Equal(t, "blob is not a valid image file.", err.Error())
}

func TestWorkspacesAreIsolated(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddFiles(ctx, "b1", []samples.File{file("a.png", "image/png", 1, "ok")})
	require.NoError(t, err)

	assert.Len(t, svc.List("b1"), 1)
	assert.Empty(t, svc.List("b2"))
}

func TestRemoveFile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	added, err := svc.AddFiles(ctx, "b1", []samples.File{
		file("a.png", "image/png", 1, "ok"),
		file("b.png", "image/png", 1, "ok"),
	})
	require.NoError(t, err)

	svc.RemoveFile(ctx, "b1", added[0].ID)
	list := svc.List("b1")
	require.Len(t, list, 1)
	assert.Equal(t, "b.png", list[0].Name)

	svc.RemoveFile(ctx, "b1", "missing")
	assert.Len(t, svc.List("b1"), 1)

	svc.RemoveFile(ctx, "b1", added[0].ID)
	assert.Len(t, svc.List("b1"), 1)
}

func TestResetFreesSlots(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddFiles(ctx, "b1", []samples.File{
		file("1.png", "image/png", 1, "ok"),
		file("2.png", "image/png", 1, "ok"),
		file("3.png", "image/png", 1, "ok"),
	})
	require.NoError(t, err)

	svc.Reset("b1")
	assert.Empty(t, svc.List("b1"))

	added, err := svc.AddFiles(ctx, "b1", []samples.File{file("4.png", "image/png", 1, "ok")})
	require.NoError(t, err)
	assert.Len(t, added, 1)
}

// cancelingNormalizer cancels the batch context on its first call.
type cancelingNormalizer struct {
	stubNormalizer
	cancel context.CancelFunc
}

func (n *cancelingNormalizer) Normalize(r io.Reader) (samples.Normalized, error) {
	n.cancel()
	return n.stubNormalizer.Normalize(r)
}

func TestAddFilesKeepsSamplesWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := &cancelingNormalizer{cancel: cancel}
	svc := NewService(n, nil)

	added, err := svc.AddFiles(ctx, "b1", []samples.File{
		file("a.png", "image/png", 1, "ok"),
		file("b.png", "image/png", 1, "ok"),
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, added, 1)
	assert.Equal(t, added, svc.List("b1"))
	assert.Equal(t, 1, n.calls)
}
