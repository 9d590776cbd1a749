package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HerbHall/paperstream/pkg/llm"
	"github.com/HerbHall/paperstream/pkg/llm/llmfake"
	"go.uber.org/zap"
)

func TestService_AnswerMatchesStream(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
	}{
		{"single", []string{"whole paper"}},
		{"several", []string{"Abstract: ...", "Introduction: ...", "Conclusion."}},
		{"with empty units", []string{"a", "", "b", "", "c"}},
		{"none", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmfake.New(tt.fragments...)
			svc := NewService(fake, "", zap.NewNop())

			var parts []string
			for frag, err := range svc.Stream(context.Background(), "topic") {
				if err != nil {
					t.Fatalf("Stream() error = %v", err)
				}
				parts = append(parts, frag.Text)
			}

			res, err := svc.Answer(context.Background(), "topic")
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if want := strings.Join(parts, ""); res.Answer != want {
				t.Errorf("Answer = %q, want %q", res.Answer, want)
			}
			if res.Query != "topic" {
				t.Errorf("Query = %q, want %q", res.Query, "topic")
			}
		})
	}
}

func TestService_AnswerFailureDiscardsPartial(t *testing.T) {
	upstream := llm.NewProviderError(llm.ErrCodeServerError, "upstream exploded", nil)
	fake := llmfake.Failing(upstream, 1, "Abstract: ...", "Introduction: ...")
	svc := NewService(fake, "", zap.NewNop())

	res, err := svc.Answer(context.Background(), "topic")
	if !errors.Is(err, upstream) {
		t.Fatalf("Answer() error = %v, want %v", err, upstream)
	}
	if res != (Result{}) {
		t.Errorf("Answer() result = %+v, want zero value", res)
	}
}

func TestService_SendsPromptAndSettings(t *testing.T) {
	fake := llmfake.New("x")
	svc := NewService(fake, "gemini-test", zap.NewNop())

	if _, err := svc.Answer(context.Background(), "tidal energy"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Prompt != BuildPrompt("tidal energy") {
		t.Error("prompt was not built from the topic")
	}
	cfg := calls[0].Config
	if cfg.Model != "gemini-test" || !cfg.Search || cfg.MaxTokens != MaxOutputTokens {
		t.Errorf("config = %+v, want research generation settings", cfg)
	}
}

func TestService_StreamRangedTwiceGeneratesTwice(t *testing.T) {
	fake := llmfake.New("one", "two")
	svc := NewService(fake, "", nil)

	seq := svc.Stream(context.Background(), "topic")
	first, err := llm.Collect(seq)
	if err != nil {
		t.Fatalf("first Collect() error = %v", err)
	}
	second, err := llm.Collect(seq)
	if err != nil {
		t.Fatalf("second Collect() error = %v", err)
	}
	if first != "onetwo" || second != "onetwo" {
		t.Errorf("got %q and %q, want onetwo twice", first, second)
	}
}
