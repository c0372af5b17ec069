package ai

import (
	"context"

	"github.com/bryanwahyu/genefit/internal/domain/samples"
)

// Client talks to the hosted chat-completion endpoint. Each call is a single
// attempt; failures are returned, never retried.
type Client interface {
	AnalyzeSamples(ctx context.Context, list []samples.Sample) (string, error)
	GenerateDietPlan(ctx context.Context, profile ProfileInput) (string, error)
}
