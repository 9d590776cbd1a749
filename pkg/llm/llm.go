// Package llm provides the public SDK types for streaming text-generation
// providers. Provider adapters live in internal/llm/{provider}/ and implement
// Streamer; callers only ever see Fragment sequences and ProviderError values.
package llm

import (
	"context"
	"iter"
	"strings"
)

// Streamer is the core interface implemented by every provider adapter.
type Streamer interface {
	// Stream opens one upstream streaming call for prompt and returns its
	// output as a lazy sequence. Nothing is sent upstream until the first
	// pull. The sequence is finite and cannot be restarted: ranging over it
	// a second time opens a new upstream call.
	//
	// A failure is yielded once as a non-nil error and ends the sequence.
	Stream(ctx context.Context, prompt string, opts ...CallOption) iter.Seq2[Fragment, error]
}

// HealthReporter is optionally implemented by providers that can report
// connection health and model availability. Detected via type assertion.
type HealthReporter interface {
	// Heartbeat checks whether the upstream service is reachable.
	Heartbeat(ctx context.Context) error

	// ListModels returns the names of models available from this provider.
	ListModels(ctx context.Context) ([]string, error)
}

// CallOption configures a single Stream call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single call.
// Users interact through CallOption functions, not this struct directly.
// Zero values mean "provider default".
type CallConfig struct {
	Model            string
	Temperature      *float32
	TopP             *float32
	TopK             *float32
	MaxTokens        int
	Search           bool
	ResponseMIMEType string
}

// WithModel sets the model to use for this call, overriding the provider default.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithTemperature sets the sampling temperature. 0 is deterministic.
func WithTemperature(temp float32) CallOption {
	return func(c *CallConfig) { c.Temperature = &temp }
}

// WithTopP sets the nucleus sampling bound.
func WithTopP(p float32) CallOption {
	return func(c *CallConfig) { c.TopP = &p }
}

// WithTopK sets the top-k sampling bound.
func WithTopK(k float32) CallOption {
	return func(c *CallConfig) { c.TopK = &k }
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(max int) CallOption {
	return func(c *CallConfig) { c.MaxTokens = max }
}

// WithSearch enables search-augmented generation where the provider supports it.
func WithSearch(enabled bool) CallOption {
	return func(c *CallConfig) { c.Search = enabled }
}

// WithResponseMIMEType sets the response format, e.g. "text/plain".
func WithResponseMIMEType(mime string) CallOption {
	return func(c *CallConfig) { c.ResponseMIMEType = mime }
}

// ApplyOptions creates a CallConfig from a list of options.
func ApplyOptions(opts ...CallOption) CallConfig {
	var cfg CallConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Collect drains seq and returns the in-order concatenation of every
// fragment. If the sequence fails, Collect returns the error and discards
// whatever was gathered.
func Collect(seq iter.Seq2[Fragment, error]) (string, error) {
	var b strings.Builder
	for frag, err := range seq {
		if err != nil {
			return "", err
		}
		b.WriteString(frag.Text)
	}
	return b.String(), nil
}
