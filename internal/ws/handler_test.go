package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/paperstream/internal/research"
	"github.com/HerbHall/paperstream/pkg/llm"
	"github.com/HerbHall/paperstream/pkg/llm/llmfake"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

var testOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func newTestWSServer(t *testing.T, fake *llmfake.Streamer) (*httptest.Server, *Handler) {
	t.Helper()
	h := NewHandler(research.NewService(fake, "", zap.NewNop()), nil, testOrigins, zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, h
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var opts *websocket.DialOptions
	if origin != "" {
		opts = &websocket.DialOptions{HTTPHeader: http.Header{"Origin": {origin}}}
	}
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", opts)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var frame map[string]string
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func send(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHandler_RelaysFragments(t *testing.T) {
	fake := llmfake.New("Abstract: ...", "Introduction: ...", "Conclusion: ...")
	srv, _ := newTestWSServer(t, fake)
	conn := dial(t, srv, "")

	send(t, conn, `{"query":"quantum computing"}`)
	for _, want := range fake.Fragments {
		if got := readFrame(t, conn); got["answer"] != want || len(got) != 1 {
			t.Errorf("frame = %v, want answer %q", got, want)
		}
	}

	// Nothing arrives until the next message; the next frame must answer it.
	send(t, conn, `{"query":""}`)
	if got := readFrame(t, conn); got["error"] != ErrQueryRequired {
		t.Errorf("frame = %v, want query-required error", got)
	}
}

func TestHandler_ErrorsKeepSessionOpen(t *testing.T) {
	upstream := llm.NewProviderError(llm.ErrCodeRateLimit, "quota exhausted", nil)
	srv, _ := newTestWSServer(t, llmfake.Failing(upstream, 1, "Abstract", "Intro"))
	conn := dial(t, srv, "")

	send(t, conn, `not json`)
	if got := readFrame(t, conn); !strings.Contains(got["error"], "invalid character") {
		t.Errorf("frame = %v, want parse error", got)
	}

	send(t, conn, `{"query":"q"}`)
	if got := readFrame(t, conn); got["answer"] != "Abstract" {
		t.Errorf("frame = %v, want first answer", got)
	}
	if got := readFrame(t, conn); got["error"] != upstream.Error() {
		t.Errorf("frame = %v, want upstream error", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageBinary, []byte{0x01}); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	if got := readFrame(t, conn); got["error"] != ErrBinaryFrame.Error() {
		t.Errorf("frame = %v, want binary-frame error", got)
	}
}

func TestHandler_OriginCheck(t *testing.T) {
	srv, _ := newTestWSServer(t, llmfake.New("x"))

	_ = dial(t, srv, "http://localhost:5173")
	_ = dial(t, srv, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": {"http://evil.example"}},
	})
	if err == nil {
		t.Fatal("Dial() from a foreign origin should fail")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestHandler_HubTracksAndClosesSessions(t *testing.T) {
	srv, h := newTestWSServer(t, llmfake.New("x"))
	conn := dial(t, srv, "")

	// A round trip guarantees the session is registered.
	send(t, conn, `{"query":"q"}`)
	_ = readFrame(t, conn)
	if n := h.Hub().SessionCount(); n != 1 {
		t.Fatalf("SessionCount() = %d, want 1", n)
	}

	// CloseAll waits for the close handshake, so the client must be reading.
	go h.Hub().CloseAll("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	if status := websocket.CloseStatus(err); status != websocket.StatusGoingAway {
		t.Errorf("close status = %v (err %v), want going away", status, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for h.Hub().SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session was not unregistered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:3000", "https://app.example.com", "*.internal"})
	want := []string{"localhost:3000", "app.example.com", "*.internal"}
	if len(got) != len(want) {
		t.Fatalf("originPatterns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
