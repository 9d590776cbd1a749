package research

import (
	"strings"
	"testing"

	"github.com/HerbHall/paperstream/pkg/llm"
)

func TestBuildPrompt_EmbedsTopicVerbatim(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{"plain", "quantum computing"},
		{"empty", ""},
		{"quotes and newlines", "the \"observer\" effect\nin practice"},
		{"unicode", "光合作用の効率"},
		{"template-like", "{{TOPIC}} and %s %v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(tt.topic)
			want := "Research Topic:\n\"" + tt.topic + "\"\n"
			if !strings.HasPrefix(p, want) {
				t.Errorf("prompt does not start with %q:\n%s", want, p[:min(len(p), 120)])
			}
		})
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("graph neural networks")
	b := BuildPrompt("graph neural networks")
	if a != b {
		t.Error("BuildPrompt is not deterministic")
	}
	if a == BuildPrompt("graph neural network") {
		t.Error("different topics produced identical prompts")
	}
}

func TestBuildPrompt_Instructions(t *testing.T) {
	p := BuildPrompt("x")
	for _, want := range []string{
		"Abstract, Introduction, Methodology, Results/Findings, Discussion, Conclusion, and References",
		"minimum of 30,000 words",
		"Do not ask any clarifying questions",
		"References section",
		"Strict Compliance",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerationSettings(t *testing.T) {
	cfg := llm.ApplyOptions(GenerationSettings("")...)

	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.Temperature)
	}
	if cfg.TopP == nil || *cfg.TopP != 0.95 {
		t.Errorf("TopP = %v, want 0.95", cfg.TopP)
	}
	if cfg.TopK == nil || *cfg.TopK != 64 {
		t.Errorf("TopK = %v, want 64", cfg.TopK)
	}
	if cfg.MaxTokens != 100000 {
		t.Errorf("MaxTokens = %d, want 100000", cfg.MaxTokens)
	}
	if !cfg.Search {
		t.Error("Search = false, want true")
	}
	if cfg.ResponseMIMEType != "text/plain" {
		t.Errorf("ResponseMIMEType = %q, want text/plain", cfg.ResponseMIMEType)
	}
}

func TestGenerationSettings_ModelOverride(t *testing.T) {
	cfg := llm.ApplyOptions(GenerationSettings("gemini-2.0-flash")...)
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want override", cfg.Model)
	}
}
