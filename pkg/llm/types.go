package llm

// Fragment is one ordered unit of generated text delivered by the upstream
// service during a single streaming call. Adapters never yield a Fragment
// with empty Text.
type Fragment struct {
	Text string `json:"text"`
}
