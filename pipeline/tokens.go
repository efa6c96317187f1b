package pipeline

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter counts tokens with tiktoken, initialized lazily because
// the first GetEncoding call may load encoding data. When the encoding
// is unavailable the counter falls back to a words-based estimate.
type tokenCounter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

func newTokenCounter() *tokenCounter {
	return &tokenCounter{encoding: "cl100k_base"}
}

func (t *tokenCounter) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = err
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Count returns the number of tokens in text. Roughly 4/3 tokens per
// word when the encoding could not be loaded.
func (t *tokenCounter) Count(text string) int {
	if err := t.init(); err != nil {
		words := len(strings.Fields(text))
		return words + words/3
	}
	return len(t.enc.Encode(text, nil, nil))
}
