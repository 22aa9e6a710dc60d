package recommend

import (
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	encodingName = "cl100k_base"

	// tiktoken fetches the BPE ranks over the network on first use unless
	// TIKTOKEN_CACHE_DIR already holds them.
	encodingLoadTimeout = 5 * time.Second
)

// TokenCounter measures a query against the configured budget.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// runeCounter approximates tokens when the BPE ranks cannot be loaded.
type runeCounter struct{}

func (runeCounter) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 1) / 2
}

// NewTokenCounter loads the cl100k encoding and falls back to a rune
// estimate when loading fails or takes longer than encodingLoadTimeout.
func NewTokenCounter() TokenCounter {
	return loadTokenCounter(func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(encodingName)
	}, encodingLoadTimeout)
}

type encodingLoader func() (*tiktoken.Tiktoken, error)

type loadResult struct {
	enc *tiktoken.Tiktoken
	err error
}

func loadTokenCounter(load encodingLoader, timeout time.Duration) TokenCounter {
	done := make(chan loadResult, 1)
	go func() {
		enc, err := load()
		done <- loadResult{enc: enc, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err != nil || res.enc == nil {
			return runeCounter{}
		}
		return tiktokenCounter{enc: res.enc}
	case <-timer.C:
		return runeCounter{}
	}
}
