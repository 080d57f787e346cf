// Package tokens counts prompt tokens so callers can enforce a tenant's
// token budget before paying for a generation call. OpenAI-family models use
// tiktoken; everything else falls back to a character-based estimate.
package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/drishiq/concierge/internal/domain"
)

// charsPerToken is the estimate used when no tokenizer covers the model.
const charsPerToken = 4.0

// perMessageOverhead approximates the framing tokens the chat format adds
// around each message.
const perMessageOverhead = 4

// Counter counts tokens for generation inputs. Codecs are cached per
// encoding; Counter is safe for concurrent use.
type Counter struct {
	mu     sync.RWMutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewCounter creates a Counter with an empty codec cache.
func NewCounter() *Counter {
	return &Counter{codecs: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

// Count returns the approximate token count of the input for model. It never
// fails: unknown models and tokenizer errors fall back to the character
// estimator so budget checks always have a number to work with.
func (c *Counter) Count(model string, input []domain.Message) int {
	codec, ok := c.codecFor(model)
	if !ok {
		return c.estimate(input)
	}

	total := 0
	for _, msg := range input {
		ids, _, err := codec.Encode(msg.Content)
		if err != nil {
			return c.estimate(input)
		}
		total += len(ids) + perMessageOverhead
	}
	return total
}

// codecFor resolves and caches the tokenizer codec for a model.
func (c *Counter) codecFor(model string) (tokenizer.Codec, bool) {
	if !isOpenAIModel(model) {
		return nil, false
	}

	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err == nil {
		return codec, true
	}

	// Unknown model variants map onto the current encoding family.
	encoding := tokenizer.Cl100kBase
	if strings.HasPrefix(model, "gpt-4o") || strings.HasPrefix(model, "o1") {
		encoding = tokenizer.O200kBase
	}

	c.mu.RLock()
	cached, ok := c.codecs[encoding]
	c.mu.RUnlock()
	if ok {
		return cached, true
	}

	codec, err = tokenizer.Get(encoding)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.codecs[encoding] = codec
	c.mu.Unlock()
	return codec, true
}

func isOpenAIModel(model string) bool {
	for _, prefix := range []string{"gpt-", "o1", "o3", "text-embedding", "text-davinci"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// estimate is the character-based fallback used for models without a
// registered tokenizer.
func (c *Counter) estimate(input []domain.Message) int {
	chars := 0
	for _, msg := range input {
		chars += len(msg.Content) + len(msg.Role)
	}
	return int(float64(chars)/charsPerToken) + len(input)*perMessageOverhead
}
