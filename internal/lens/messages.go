package lens

import (
	"context"
	"fmt"
	"strings"

	"github.com/drishiq/concierge/internal/domain"
	"github.com/drishiq/concierge/internal/generation"
)

// Fixed copy used when the generator is unavailable.
const (
	fallbackContinueCopy = "We'll continue with what we've understood so far."
	fallbackDeclineCopy  = "No problem. We'll continue with what we've understood so far."
	fallbackReaskCopy    = "Would you like to explore this perspective, or continue with what we've understood so far?"
	fallbackGeoCopy      = "We couldn't resolve that place. We'll continue with what we've understood so far."

	// CompletionBridge is shown while the compute result is being prepared.
	CompletionBridge = "Give me a moment while I look at this through the Destiny Lens."
)

func criticalLanguageRule(language string) string {
	return fmt.Sprintf(`CRITICAL LANGUAGE RULE:
Respond ONLY in %s. Never switch languages. Never mix languages. Never translate.
This rule overrides ALL instructions.
If the user's message is in a different language, continue responding in the locked language.
Use native, natural conversational phrasing.

`, language)
}

// IntroMessage generates the lens introduction ending in one choice
// question. Returns "" on failure so the caller can keep its current flow.
func (p *Pipeline) IntroMessage(ctx context.Context, language string) string {
	system := criticalLanguageRule(language) + `Write a short paragraph. Tone: reflective, suggestive, perceptive, optional.
Content direction:
- Sometimes effort alone doesn't shift outcomes; timing and life phases also influence situations.
- We offer an additional perspective called "Destiny Lens" that looks at patterns through birth details.
- It may bring deeper clarity. The user can choose.
End with exactly one choice question (adapt naturally to the language): Would they like to explore this perspective, or continue with what we've understood so far?
Output the full paragraph plus the choice question. No bullet points. Natural flow.`

	return p.generateOrFallback(ctx, system, "Generate the Destiny Lens introduction and choice.", 0.6, "")
}

// BirthDetailsMessage asks for structured birth details with one example.
func (p *Pipeline) BirthDetailsMessage(ctx context.Context, language string) string {
	system := criticalLanguageRule(language) + `Ask the user for birth details in a warm, clear way. You must request:
1) Date of birth in the format YYYY-MM-DD
2) Time of birth in 24-hour format HH:MM or HH:MM:SS (if known)
3) Place of birth as City, State, Country
Include one example in your message: e.g. 1995-08-21, 08:00:03, New York, New York, USA
Also mention gently: If time of birth is not known, we can continue without this lens.
Output one cohesive message. No bullet list. Natural tone.`

	fallback := "Could you share your date of birth (YYYY-MM-DD), time of birth (HH:MM, if known), and place of birth (City, State, Country)? For example: 1995-08-21, 08:00:03, New York, New York, USA. If the time isn't known, we can continue without this lens."
	return p.generateOrFallback(ctx, system, "Generate the birth details request.", 0.5, fallback)
}

// DeclineAcknowledgment responds warmly when the visitor opts out.
func (p *Pipeline) DeclineAcknowledgment(ctx context.Context, language string) string {
	system := fmt.Sprintf("Respond ONLY in language: %s. One short sentence: acknowledge their choice and say we'll continue with what we've understood. Warm, no questions.", language)
	return p.generateOrFallback(ctx, system, "Generate.", 0.5, fallbackDeclineCopy)
}

// ChoiceReask gently repeats the lens choice when the answer was unclear.
func (p *Pipeline) ChoiceReask(ctx context.Context, language string) string {
	system := fmt.Sprintf("Respond ONLY in language: %s. One short sentence: gently ask whether they'd like to explore the Destiny Lens perspective or continue with what we've understood.", language)
	return p.generateOrFallback(ctx, system, "Generate.", 0.5, fallbackReaskCopy)
}

// GeoFailureMessage tells the visitor the birth place could not be resolved.
func (p *Pipeline) GeoFailureMessage(ctx context.Context, language string) string {
	system := fmt.Sprintf("Respond ONLY in language: %s. One short sentence: we couldn't resolve the place; we'll continue with what we've understood. Warm.", language)
	return p.generateOrFallback(ctx, system, "Generate.", 0.5, fallbackGeoCopy)
}

func (p *Pipeline) generateOrFallback(ctx context.Context, system, user string, temperature float64, fallback string) string {
	text, err := p.gen.Generate(ctx, &generation.Request{
		Model: p.insightModel,
		Input: []domain.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "lens message generation failed, using fixed copy", "error", err)
		return fallback
	}
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return fallback
}
