// Package llm defines the text-generation service used to analyze news.
package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Client sends one system instruction and one user prompt and returns the
// raw text of the first reply.
type Client interface {
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}
