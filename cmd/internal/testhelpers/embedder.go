// Package testhelpers provides deterministic stand-ins for external services.
package testhelpers

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// KeywordDimensions is the length of every vector KeywordEmbedder returns.
const KeywordDimensions = 64

// KeywordEmbedder hashes lowercase words into a fixed-size bag-of-words
// vector, so texts sharing words end up close under cosine similarity.
type KeywordEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func NewKeywordEmbedder() *KeywordEmbedder {
	return &KeywordEmbedder{}
}

func (e *KeywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vec := make([]float32, KeywordDimensions)
	// Bias component keeps word-less input from producing a zero vector.
	vec[0] = 0.01
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[1+int(h.Sum32()%(KeywordDimensions-1))] += 1
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// SetErr makes every following Embed call fail with err (nil restores it).
func (e *KeywordEmbedder) SetErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Calls returns how many times Embed was invoked.
func (e *KeywordEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// ErrUnavailable is a canned failure for simulating an unreachable service.
var ErrUnavailable = errors.New("service unavailable")
