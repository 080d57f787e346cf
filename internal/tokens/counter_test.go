package tokens

import (
	"testing"

	"github.com/drishiq/concierge/internal/domain"
)

func TestCounter_OpenAIModel(t *testing.T) {
	c := NewCounter()
	input := []domain.Message{
		{Role: "system", Content: "You are a helpful intake guide."},
		{Role: "user", Content: "Good evening."},
	}

	count := c.Count("gpt-4-turbo", input)
	if count <= 0 {
		t.Fatalf("Count() = %d, want > 0", count)
	}

	// A longer prompt must count more tokens.
	longer := append(input, domain.Message{Role: "user", Content: "I have been dealing with a lot of work stress lately and I am not sure what to do about it."})
	if got := c.Count("gpt-4-turbo", longer); got <= count {
		t.Errorf("longer input counted %d, want > %d", got, count)
	}
}

func TestCounter_UnknownModelEstimates(t *testing.T) {
	c := NewCounter()
	input := []domain.Message{{Role: "user", Content: "hello there"}}

	count := c.Count("mystery-model-v2", input)
	if count <= 0 {
		t.Fatalf("Count() = %d, want > 0 from estimator", count)
	}
}

func TestCounter_EmptyInput(t *testing.T) {
	c := NewCounter()
	if got := c.Count("gpt-4-turbo", nil); got != 0 {
		t.Errorf("Count(empty) = %d, want 0", got)
	}
}
