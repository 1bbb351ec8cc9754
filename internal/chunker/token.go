package chunker

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is the GPT-style sub-word encoding used for counting.
const tokenEncoding = "cl100k_base"

// TokenCounter counts tokens with a lazily-built tiktoken encoder. The
// encoder is constructed at most once; when construction fails the
// counter transparently falls back to whitespace-word counting. Safe for
// concurrent use: the handle is immutable after the one-time init.
type TokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	log  *slog.Logger
}

func NewTokenCounter(log *slog.Logger) *TokenCounter {
	if log == nil {
		log = slog.Default()
	}
	return &TokenCounter{log: log}
}

// Count returns the token count of text. Empty string is 0. Cost is
// proportional to len(text): callers must pass only the substring under
// consideration, never re-tokenize the whole document.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	tc.once.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			tc.log.Warn("token encoder unavailable, counting words instead",
				"encoding", tokenEncoding,
				"error", err,
			)
			return
		}
		tc.enc = enc
	})
	if tc.enc == nil {
		return len(strings.Fields(text))
	}
	return len(tc.enc.Encode(text, nil, nil))
}
