// Package llmfake provides a scripted, in-memory llm.Streamer for tests.
// It never touches the network.
package llmfake

import (
	"context"
	"iter"
	"sync"

	"github.com/HerbHall/paperstream/pkg/llm"
)

// Compile-time interface guard.
var _ llm.Streamer = (*Streamer)(nil)

// Call records one Stream invocation.
type Call struct {
	Prompt string
	Config llm.CallConfig
}

// Streamer replays Fragments in order. When Err is set it is yielded after
// FailAfter fragments have been delivered. Empty entries in Fragments are
// skipped, mirroring how real adapters drop content-free upstream units.
type Streamer struct {
	Fragments []string
	Err       error
	FailAfter int

	// Gate, when non-nil, is received from before each fragment is yielded.
	// Tests use it to observe the consumer between pulls.
	Gate <-chan struct{}

	mu    sync.Mutex
	calls []Call
}

// New returns a Streamer that yields fragments and then completes.
func New(fragments ...string) *Streamer {
	return &Streamer{Fragments: fragments}
}

// Failing returns a Streamer that yields the first n fragments and then err.
func Failing(err error, n int, fragments ...string) *Streamer {
	return &Streamer{Fragments: fragments, Err: err, FailAfter: n}
}

// Stream implements llm.Streamer.
func (s *Streamer) Stream(ctx context.Context, prompt string, opts ...llm.CallOption) iter.Seq2[llm.Fragment, error] {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Prompt: prompt, Config: llm.ApplyOptions(opts...)})
	s.mu.Unlock()

	return func(yield func(llm.Fragment, error) bool) {
		delivered := 0
		for _, text := range s.Fragments {
			if s.Err != nil && delivered == s.FailAfter {
				break
			}
			if s.Gate != nil {
				select {
				case <-s.Gate:
				case <-ctx.Done():
				}
			}
			if err := ctx.Err(); err != nil {
				yield(llm.Fragment{}, err)
				return
			}
			if text == "" {
				continue
			}
			if !yield(llm.Fragment{Text: text}, nil) {
				return
			}
			delivered++
		}
		if s.Err != nil {
			yield(llm.Fragment{}, s.Err)
		}
	}
}

// Calls returns a copy of every recorded Stream invocation.
func (s *Streamer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}
