// Package research turns a topic into a research-paper generation and
// exposes it as a fragment stream and as one aggregated answer.
package research

import (
	"context"
	"iter"

	"github.com/HerbHall/paperstream/pkg/llm"
	"go.uber.org/zap"
)

// Result is the aggregated outcome of one research query.
type Result struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// Service drives research generations through an llm.Streamer.
type Service struct {
	streamer llm.Streamer
	model    string
	logger   *zap.Logger
}

// NewService creates a Service. An empty model selects DefaultModel.
func NewService(streamer llm.Streamer, model string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = DefaultModel
	}
	return &Service{streamer: streamer, model: model, logger: logger}
}

// Stream returns the fragment sequence for topic. Nothing is sent upstream
// until the first pull. Ranging over the result twice issues two calls.
func (s *Service) Stream(ctx context.Context, topic string) iter.Seq2[llm.Fragment, error] {
	return s.streamer.Stream(ctx, BuildPrompt(topic), GenerationSettings(s.model)...)
}

// Answer drains Stream(topic) and returns the in-order concatenation of its
// fragments. Any stream failure fails the whole call.
func (s *Service) Answer(ctx context.Context, topic string) (Result, error) {
	return s.collect(topic, s.Stream(ctx, topic))
}

func (s *Service) collect(topic string, seq iter.Seq2[llm.Fragment, error]) (Result, error) {
	answer, err := llm.Collect(seq)
	if err != nil {
		s.logger.Warn("research generation failed",
			zap.Int("topic_len", len(topic)),
			zap.String("code", llm.Code(err)),
			zap.Error(err),
		)
		return Result{}, err
	}
	s.logger.Debug("research generation complete",
		zap.Int("topic_len", len(topic)),
		zap.Int("answer_len", len(answer)),
	)
	return Result{Query: topic, Answer: answer}, nil
}
