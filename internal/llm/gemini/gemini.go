// Package gemini implements the llm.Streamer interface on top of the
// Google Gemini streaming API.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/HerbHall/paperstream/pkg/llm"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Compile-time interface guards.
var (
	_ llm.Streamer       = (*Provider)(nil)
	_ llm.HealthReporter = (*Provider)(nil)
)

// Provider streams generations from Gemini.
type Provider struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Gemini provider. An empty apiKey is accepted so the process
// can start without a credential; every Stream call then fails with an
// authentication error instead of reaching the network.
func New(ctx context.Context, cfg Config, apiKey string, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	p := &Provider{cfg: cfg, logger: logger}
	if apiKey == "" {
		logger.Warn("gemini api key not configured, queries will fail with authentication_error")
		return p, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	p.client = client

	logger.Info("gemini provider configured",
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return p, nil
}

// Stream implements llm.Streamer. Units with no candidate text, such as
// grounding metadata or a trailing finish reason, are skipped.
func (p *Provider) Stream(ctx context.Context, prompt string, opts ...llm.CallOption) iter.Seq2[llm.Fragment, error] {
	cfg := llm.ApplyOptions(opts...)
	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	return func(yield func(llm.Fragment, error) bool) {
		if p.client == nil {
			yield(llm.Fragment{}, llm.NewProviderError(llm.ErrCodeAuthentication, "gemini: api key not configured", nil))
			return
		}

		var delivered, skipped int
		for resp, err := range p.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), generateConfig(cfg)) {
			if err != nil {
				mapped := mapError(err)
				p.logger.Debug("gemini stream failed",
					zap.String("model", model),
					zap.Int("fragments", delivered),
					zap.Error(mapped),
				)
				yield(llm.Fragment{}, mapped)
				return
			}

			// In-band error units decode as empty responses and land here too.
			text := candidateText(resp)
			if text == "" {
				skipped++
				continue
			}
			delivered++
			if !yield(llm.Fragment{Text: text}, nil) {
				return
			}
		}

		p.logger.Debug("gemini stream finished",
			zap.String("model", model),
			zap.Int("fragments", delivered),
			zap.Int("skipped", skipped),
		)
	}
}

// Heartbeat implements llm.HealthReporter.
func (p *Provider) Heartbeat(ctx context.Context) error {
	if p.client == nil {
		return llm.NewProviderError(llm.ErrCodeAuthentication, "gemini: api key not configured", nil)
	}
	for _, err := range p.client.Models.All(ctx) {
		if err != nil {
			return mapError(err)
		}
		break
	}
	return nil
}

// ListModels implements llm.HealthReporter.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	if p.client == nil {
		return nil, llm.NewProviderError(llm.ErrCodeAuthentication, "gemini: api key not configured", nil)
	}
	var names []string
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, mapError(err)
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func generateConfig(cfg llm.CallConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		TopK:             cfg.TopK,
		ResponseMIMEType: cfg.ResponseMIMEType,
	}
	if cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.MaxTokens)
	}
	if cfg.Search {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return gc
}

// candidateText joins the non-thought text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
