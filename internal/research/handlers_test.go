package research

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/paperstream/internal/server"
	"github.com/HerbHall/paperstream/pkg/llm"
	"github.com/HerbHall/paperstream/pkg/llm/llmfake"
	"go.uber.org/zap"
)

func newTestHandler(fake *llmfake.Streamer) *http.ServeMux {
	h := NewHandler(NewService(fake, "", zap.NewNop()), zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func doProcess(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleProcess_Success(t *testing.T) {
	fake := llmfake.New("Abstract: ...", "Introduction: ...")
	mux := newTestHandler(fake)

	w := doProcess(t, mux, `{"query":"quantum computing"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["answer"] != "Abstract: ...Introduction: ..." {
		t.Errorf("answer = %v", resp["answer"])
	}
	if len(resp) != 1 {
		t.Errorf("response fields = %v, want only answer", resp)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Prompt != BuildPrompt("quantum computing") {
		t.Errorf("upstream calls = %+v", calls)
	}
}

func TestHandleProcess_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{"not json", `query=hello`, http.StatusBadRequest, "invalid JSON body"},
		{"truncated json", `{"query":`, http.StatusBadRequest, "invalid JSON body"},
		{"empty body", ``, http.StatusBadRequest, "invalid JSON body"},
		{"array body", `["quantum"]`, http.StatusUnprocessableEntity, "JSON object"},
		{"missing query", `{}`, http.StatusUnprocessableEntity, "query is required"},
		{"null query", `{"query":null}`, http.StatusUnprocessableEntity, "query is required"},
		{"empty query", `{"query":""}`, http.StatusUnprocessableEntity, "query is required"},
		{"numeric query", `{"query":42}`, http.StatusUnprocessableEntity, "query must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmfake.New("never")
			mux := newTestHandler(fake)

			w := doProcess(t, mux, tt.body)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", ct)
			}
			var p server.Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if !strings.Contains(p.Detail, tt.detail) {
				t.Errorf("detail = %q, want it to contain %q", p.Detail, tt.detail)
			}
			if n := len(fake.Calls()); n != 0 {
				t.Errorf("upstream calls = %d, want 0 for rejected input", n)
			}
		})
	}
}

func TestHandleProcess_UpstreamFailure(t *testing.T) {
	upstream := llm.NewProviderError(llm.ErrCodeRateLimit, "quota exhausted", errors.New("429"))
	mux := newTestHandler(llmfake.Failing(upstream, 1, "Abstract: ...", "Introduction: ..."))

	w := doProcess(t, mux, `{"query":"quantum computing"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var p server.Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if p.Detail != upstream.Error() {
		t.Errorf("detail = %q, want %q", p.Detail, upstream.Error())
	}
	if strings.Contains(w.Body.String(), "Abstract") {
		t.Error("partial answer leaked into failure response")
	}
}

func TestHandleProcess_MethodNotAllowed(t *testing.T) {
	mux := newTestHandler(llmfake.New("x"))

	req := httptest.NewRequest("GET", "/process", http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
