package greeter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/drishiq/concierge/internal/domain"
	"github.com/drishiq/concierge/internal/generation"
)

type fakeGenerator struct {
	text string
	err  error
	req  *generation.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req *generation.Request) (string, error) {
	f.req = req
	return f.text, f.err
}

func TestFirstMessageShape(t *testing.T) {
	b := NewBuilder(&fakeGenerator{})
	doc := b.Instructions(PromptInput{
		Goal:     domain.GoalName,
		Language: "en",
		Rapport:  &RapportContext{City: "Roorkee", TimeOfDay: "morning", VisitCount: 1},
	})

	for _, want := range []string{
		"time-of-day greeting",
		`"I'm DrishiQ."`,
		"asking what to call them",
		"FIRST MESSAGE ONLY - STRICT RULE",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("first-message instructions missing %q", want)
		}
	}
	if strings.Contains(doc, "Roorkee") {
		t.Error("first-message instructions must not contain the city")
	}
	if !strings.Contains(doc, "City: withheld") {
		t.Error("rapport block should withhold the city before confirmation")
	}
}

func TestCityAppearsOnlyDuringConfirmation(t *testing.T) {
	b := NewBuilder(&fakeGenerator{})
	rapport := &RapportContext{City: "Roorkee", TimeOfDay: "evening", VisitCount: 2, Returning: true}

	tests := []struct {
		name      string
		goal      domain.NextIdentityGoal
		collected []string
		confirmed bool
		wantCity  bool
	}{
		{"mid collection", domain.GoalProblem, []string{"Name"}, false, false},
		{"confirmation turn", domain.GoalGenderConfirm, []string{"Name", "Why they came", "Life stage"}, false, true},
		{"email after confirmation done", domain.GoalEmail, []string{"Name", "Why they came", "Life stage", "Gender (if needed)"}, true, false},
		{"phone checkpoint", domain.GoalPhoneRequired, []string{"Name"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := b.Instructions(PromptInput{
				Goal:              tt.goal,
				AlreadyCollected:  tt.collected,
				Language:          "en",
				Rapport:           rapport,
				IdentityConfirmed: tt.confirmed,
			})
			if got := strings.Contains(doc, "Roorkee"); got != tt.wantCity {
				t.Errorf("city in document = %v, want %v", got, tt.wantCity)
			}
		})
	}
}

func TestConfirmationBlockGatedByFlag(t *testing.T) {
	b := NewBuilder(&fakeGenerator{})
	in := PromptInput{
		Goal:             domain.GoalGenderConfirm,
		AlreadyCollected: []string{"Name", "Why they came", "Life stage"},
		Language:         "en",
	}

	if doc := b.Instructions(in); !strings.Contains(doc, "IDENTITY CONFIRMATION RULE") {
		t.Error("expected confirmation block before the flag is set")
	}
	in.IdentityConfirmed = true
	if doc := b.Instructions(in); strings.Contains(doc, "IDENTITY CONFIRMATION RULE") {
		t.Error("confirmation block must not repeat once done")
	}
}

func TestInstructionsNormalizeLanguage(t *testing.T) {
	b := NewBuilder(&fakeGenerator{})
	doc := b.Instructions(PromptInput{Goal: domain.GoalName, Language: "Klingon"})
	if !strings.Contains(doc, "Respond ONLY in en.") {
		t.Error("unsupported language should be locked to en")
	}
}

func TestGoalInstructions(t *testing.T) {
	b := NewBuilder(&fakeGenerator{})
	tests := []struct {
		goal domain.NextIdentityGoal
		want string
	}{
		{domain.GoalGenderConfirm, "should I refer to you as he"},
		{domain.GoalComplete, "Stop asking identity questions"},
		{domain.GoalPhoneRequired, "Ask naturally for a phone number"},
		{domain.GoalAwaitingOTP, "verifying their phone via OTP"},
		{domain.GoalVerifiedReadyForHandoff, "Stop asking identity questions"},
	}
	for _, tt := range tests {
		t.Run(string(tt.goal), func(t *testing.T) {
			doc := b.Instructions(PromptInput{Goal: tt.goal, AlreadyCollected: []string{"Name"}, Language: "en"})
			if !strings.Contains(doc, tt.want) {
				t.Errorf("instructions for %s missing %q", tt.goal, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{text: "  Good morning. I'm DrishiQ. What should I call you?  "}
	b := NewBuilder(gen)
	ai := domain.AIConfig{Model: "gpt-4-turbo", Temperature: 0.85, MaxTokens: 500}

	got := b.Generate(context.Background(), FirstGreetingPrompt, PromptInput{Goal: domain.GoalName, Language: "en"}, ai)
	if got != "Good morning. I'm DrishiQ. What should I call you?" {
		t.Errorf("Generate = %q", got)
	}
	if gen.req.Model != "gpt-4-turbo" || gen.req.Temperature != 0.85 {
		t.Errorf("request params = %s/%v", gen.req.Model, gen.req.Temperature)
	}
	if len(gen.req.Input) != 2 || gen.req.Input[0].Role != "system" || gen.req.Input[1].Content != FirstGreetingPrompt {
		t.Error("request input should be system instructions plus the user prompt")
	}
}

func TestGenerateFailureReturnsEmpty(t *testing.T) {
	b := NewBuilder(&fakeGenerator{err: errors.New("backend down")})
	if got := b.Generate(context.Background(), "hi", PromptInput{Goal: domain.GoalName}, domain.AIConfig{}); got != "" {
		t.Errorf("Generate on failure = %q, want empty", got)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"HI", "hi"},
		{" ta ", "ta"},
		{"bn", "bn"},
		{"sv", "en"},
		{"", "en"},
		{"english", "en"},
	}
	for _, tt := range tests {
		if got := NormalizeLanguage(tt.in); got != tt.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{23, "evening"},
	}
	for _, tt := range tests {
		at := time.Date(2026, 3, 1, tt.hour, 30, 0, 0, time.UTC)
		if got := TimeOfDay(at); got != tt.want {
			t.Errorf("TimeOfDay(hour=%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}
