package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
)

type fakeEndpoint struct {
	calls   atomic.Int32
	status  int
	body    string
	lastReq map[string]any
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer test-key" {
		http.Error(w, `{"error":{"message":"bad route or key"}}`, http.StatusUnauthorized)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &f.lastReq)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newFake(t *testing.T, status int, body string) (*fakeEndpoint, *Client) {
	t.Helper()
	f := &fakeEndpoint{status: status, body: body}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewClient("test-key", srv.URL+"/v1", "")
}

const okBody = `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Workout: sprint."},"finish_reason":"stop"}]}`

func TestAnalyzeSamplesBuildsMultipartMessage(t *testing.T) {
	f, c := newFake(t, http.StatusOK, okBody)

	text, err := c.AnalyzeSamples(context.Background(), []samples.Sample{
		{ID: "a", Preview: "data:image/jpeg;base64,AAA"},
		{ID: "b", Preview: "data:image/jpeg;base64,BBB"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Workout: sprint.", text)

	assert.Equal(t, DefaultModel, f.lastReq["model"])
	assert.EqualValues(t, 4096, f.lastReq["max_tokens"])
	msgs := f.lastReq["messages"].([]any)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	content := msg["content"].([]any)
	require.Len(t, content, 3)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	img := content[2].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	assert.Equal(t, "data:image/jpeg;base64,BBB", img["image_url"].(map[string]any)["url"])
}

func TestAnalyzeSamplesEmptyListMakesNoCall(t *testing.T) {
	f, c := newFake(t, http.StatusOK, okBody)

	_, err := c.AnalyzeSamples(context.Background(), nil)

	var vErr *domai.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domai.MsgNoSamples, vErr.Message)
	assert.Zero(t, f.calls.Load())
}

func TestGenerateDietPlanSendsPlainPrompt(t *testing.T) {
	f, c := newFake(t, http.StatusOK, okBody)

	_, err := c.GenerateDietPlan(context.Background(), domai.ProfileInput{Age: "30", Weight: "70", Height: "175"})
	require.NoError(t, err)

	assert.EqualValues(t, 2048, f.lastReq["max_tokens"])
	msg := f.lastReq["messages"].([]any)[0].(map[string]any)
	assert.Contains(t, msg["content"], "Age: 30 years")
}

func TestGenerateDietPlanRequiresEveryField(t *testing.T) {
	f, c := newFake(t, http.StatusOK, okBody)

	_, err := c.GenerateDietPlan(context.Background(), domai.ProfileInput{Age: "30", Weight: " ", Height: "175"})

	var vErr *domai.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, f.calls.Load())
}

func TestEmptyContentFallsBackToPlaceholder(t *testing.T) {
	_, c := newFake(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""}}]}`)

	text, err := c.GenerateDietPlan(context.Background(), domai.ProfileInput{Age: "1", Weight: "2", Height: "3"})
	require.NoError(t, err)
	assert.Equal(t, "No diet plan generated.", text)
}

func TestCompletionFailures(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		transport bool
		quota     bool
	}{
		{"server error with text body", http.StatusInternalServerError, "upstream exploded", true, false},
		{"api error body", http.StatusBadRequest, `{"error":{"message":"bad model","type":"invalid_request_error"}}`, true, false},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota","type":"rate_limit"}}`, true, true},
		{"body not json", http.StatusOK, "<html>oops</html>", false, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, c := newFake(t, tc.status, tc.body)

			_, err := c.AnalyzeSamples(context.Background(), []samples.Sample{{Preview: "data:image/jpeg;base64,AA"}})
			require.Error(t, err)
			assert.EqualValues(t, 1, f.calls.Load(), "single attempt")

			var planErr domai.PlanGenerationError
			require.ErrorAs(t, err, &planErr)

			var tErr *domai.TransportError
			var pErr *domai.ParseError
			if tc.transport {
				require.ErrorAs(t, err, &tErr)
				assert.Equal(t, tc.status, tErr.StatusCode)
			} else {
				assert.ErrorAs(t, err, &pErr)
			}
			assert.Equal(t, tc.quota, errors.Is(err, domai.ErrQuotaExceeded))
		})
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewClient("test-key", url+"/v1", "")

	_, err := c.GenerateDietPlan(context.Background(), domai.ProfileInput{Age: "1", Weight: "2", Height: "3"})

	var tErr *domai.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Zero(t, tErr.StatusCode)
}
