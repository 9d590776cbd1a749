// Package llmtest provides shared contract tests that verify any
// llm.Streamer implementation behaves correctly. Every adapter's test
// file should call TestStreamerContract to ensure conformance.
//
// Live adapters need a reachable upstream. Use build tags or environment
// variables to skip when no service is available.
package llmtest

import (
	"context"
	"strings"
	"testing"

	"github.com/HerbHall/paperstream/pkg/llm"
)

// TestStreamerContract runs a suite of behavioral contract tests against
// any llm.Streamer implementation. Call this from each adapter's _test.go:
//
//	func TestContract(t *testing.T) {
//	    llmtest.TestStreamerContract(t, func() llm.Streamer { return newProvider(t) })
//	}
func TestStreamerContract(t *testing.T, factory func() llm.Streamer) {
	t.Helper()

	t.Run("Stream_yields_non_empty_fragments", func(t *testing.T) {
		s := factory()
		n := 0
		for frag, err := range s.Stream(context.Background(), "Say hello in exactly three words") {
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if frag.Text == "" {
				t.Error("Stream() yielded an empty fragment")
			}
			n++
		}
		if n == 0 {
			t.Error("Stream() yielded no fragments")
		}
	})

	t.Run("Collect_matches_fragment_concatenation", func(t *testing.T) {
		s := factory()
		var parts []string
		seq := s.Stream(context.Background(), "Count from one to five in words.", llm.WithTemperature(0))
		for frag, err := range seq {
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			parts = append(parts, frag.Text)
		}
		joined := strings.Join(parts, "")
		if joined == "" {
			t.Fatal("Stream() produced no text")
		}
	})

	t.Run("Stream_stops_when_consumer_breaks", func(t *testing.T) {
		s := factory()
		pulled := 0
		for _, err := range s.Stream(context.Background(), "Write two sentences about rivers.") {
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			pulled++
			break
		}
		if pulled != 1 {
			t.Errorf("pulled = %d, want 1", pulled)
		}
	})

	t.Run("Stream_cancelled_context", func(t *testing.T) {
		s := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var gotErr error
		for _, err := range s.Stream(ctx, "Write a very long essay about everything") {
			if err != nil {
				gotErr = err
				break
			}
		}
		if gotErr == nil {
			t.Error("Stream() with cancelled context should yield an error")
		}
	})

	t.Run("HealthReporter_if_implemented", func(t *testing.T) {
		s := factory()
		hr, ok := s.(llm.HealthReporter)
		if !ok {
			t.Skip("Streamer does not implement HealthReporter")
		}
		if err := hr.Heartbeat(context.Background()); err != nil {
			t.Errorf("Heartbeat() error = %v", err)
		}
		models, err := hr.ListModels(context.Background())
		if err != nil {
			t.Fatalf("ListModels() error = %v", err)
		}
		if len(models) == 0 {
			t.Error("ListModels() returned empty list")
		}
	})
}
