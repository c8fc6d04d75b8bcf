// Package tokenizer converts text to and from token sequences for
// panel budgeting, and estimates request sizes for rate limiting.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when no model is specified.
const DefaultEncoding = "cl100k_base"

// Codec converts text to and from a token sequence.
type Codec interface {
	// Encode converts text into its token sequence.
	Encode(text string) []int

	// Decode converts a token slice back into text. Decoded panel text
	// is only used as a generation prompt, never as final chunk output.
	Decode(tokens []int) string

	// Count returns the number of tokens in text.
	Count(text string) int
}

// Tiktoken is a Codec backed by a tiktoken BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

var _ Codec = (*Tiktoken)(nil)

// NewTiktoken creates a codec for a named BPE encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// ForModel creates a codec matching a model's tokenizer.
func ForModel(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("load encoding for model %q: %w", model, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

func (t *Tiktoken) Count(text string) int {
	return len(t.Encode(text))
}

// Estimate approximates a token count from byte length without running
// the tokenizer, roughly 4 bytes per token for English prose. Used for
// rate-limit sizing where an overshoot is harmless.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
