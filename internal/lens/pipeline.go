// Package lens runs the destiny-lens flow: a problem statement becomes a
// structured analytical context, the compute collaborator turns it into
// numeric signals, and a final generation call turns the signals into
// natural-language guidance. Every stage has a defined fallback; Run never
// returns an error.
package lens

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/drishiq/concierge/internal/astro"
	"github.com/drishiq/concierge/internal/domain"
	"github.com/drishiq/concierge/internal/generation"
	"github.com/drishiq/concierge/internal/greeter"
)

const (
	defaultStructuringModel = "gpt-4o-mini"
	defaultInsightModel     = "gpt-4-turbo"
	structuringMaxTokens    = 220
)

// ComputeService is the deterministic signal collaborator.
type ComputeService interface {
	Compute(ctx context.Context, input *astro.ComputeInput) (*domain.AstroSignal, error)
}

// Profile carries the identity fields the conversational fallback may draw
// on. All fields are optional.
type Profile struct {
	Name     string `json:"name,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
	Gender   string `json:"gender,omitempty"`
	City     string `json:"city,omitempty"`
	DOBDate  string `json:"dob_date,omitempty"`
	Place    string `json:"place,omitempty"`
}

// Request is one lens invocation.
type Request struct {
	ProblemStatement string
	Birth            *domain.BirthDetails
	Language         string
	Profile          Profile
}

// Result is the lens output. Signals are attached only when the compute
// call succeeded; FromComputeLayer is false on the conversational fallback.
type Result struct {
	Text             string
	Signals          *domain.AstroSignal
	FromComputeLayer bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStructuringModel overrides the model used for intent structuring.
func WithStructuringModel(model string) PipelineOption {
	return func(p *Pipeline) {
		p.structuringModel = model
	}
}

// WithInsightModel overrides the model used for flavoring and fallbacks.
func WithInsightModel(model string) PipelineOption {
	return func(p *Pipeline) {
		p.insightModel = model
	}
}

// Pipeline orchestrates the lens stages.
type Pipeline struct {
	gen              generation.Generator
	compute          ComputeService
	logger           *slog.Logger
	structuringModel string
	insightModel     string
}

// NewPipeline creates a Pipeline over the generation and compute
// collaborators.
func NewPipeline(gen generation.Generator, compute ComputeService, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		gen:              gen,
		compute:          compute,
		logger:           slog.Default(),
		structuringModel: defaultStructuringModel,
		insightModel:     defaultInsightModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the lens flow. The stages are strictly sequential: the
// compute input depends on the structured context and the flavoring input
// depends on the compute result. Incomplete birth details or a failed
// compute call take the conversational-fallback branch without touching
// the compute collaborator further.
func (p *Pipeline) Run(ctx context.Context, req *Request) *Result {
	language := greeter.NormalizeLanguage(req.Language)

	if !req.Birth.ComputeReady() {
		return &Result{Text: p.conversationalFallback(ctx, req, language)}
	}

	problemContext := p.StructureIntent(ctx, req.ProblemStatement)

	signal, err := p.compute.Compute(ctx, &astro.ComputeInput{
		DOBDate:        req.Birth.DOBDate,
		DOBTime:        req.Birth.DOBTime,
		Latitude:       *req.Birth.Latitude,
		Longitude:      *req.Birth.Longitude,
		Timezone:       req.Birth.Timezone,
		ProblemContext: problemContext,
		UDASummary:     req.ProblemStatement,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "lens compute failed, taking conversational fallback",
			"stage", "compute",
			"error", err)
		return &Result{Text: p.conversationalFallback(ctx, req, language)}
	}

	text := p.flavorSignals(ctx, signal, problemContext, language)
	if text == "" {
		text = renderSignalTemplate(signal)
	}
	return &Result{Text: text, Signals: signal, FromComputeLayer: true}
}

// StructureIntent expands a raw problem statement into a 3-5 line neutral
// analytical context. Any failure returns the raw statement unchanged; this
// stage never blocks the pipeline.
func (p *Pipeline) StructureIntent(ctx context.Context, problemStatement string) string {
	raw := strings.TrimSpace(problemStatement)
	if raw == "" {
		return raw
	}

	userContent := fmt.Sprintf("User's problem statement:\n%q\n\nProduce the analytical problem_context for timing/alignment evaluation.", raw)
	refined, err := p.gen.Generate(ctx, &generation.Request{
		Model: p.structuringModel,
		Input: []domain.Message{
			{Role: "system", Content: intentStructuringSystem},
			{Role: "user", Content: userContent},
		},
		Temperature: 0.3,
		MaxTokens:   structuringMaxTokens,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "intent structuring failed, using raw problem statement",
			"stage", "structuring",
			"error", err)
		return raw
	}
	if refined = strings.TrimSpace(refined); refined != "" {
		return refined
	}
	return raw
}

// flavorSignals turns the numeric signals into 2-3 sentences in the
// requested language. Confidence adjusts tone only and is never printed.
// Returns "" on failure so Run can apply the templated last resort.
func (p *Pipeline) flavorSignals(ctx context.Context, signal *domain.AstroSignal, problemContext, language string) string {
	text, err := p.gen.Generate(ctx, &generation.Request{
		Model: p.insightModel,
		Input: []domain.Message{
			{Role: "system", Content: insightSystem(signal, problemContext, language)},
			{Role: "user", Content: "Generate the Destiny Lens insight blocks."},
		},
		Temperature: 0.6,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "signal flavoring failed, using templated rendering",
			"stage", "flavoring",
			"error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// renderSignalTemplate is the last-resort rendering when flavoring fails:
// a plain statement of the four raw values.
func renderSignalTemplate(signal *domain.AstroSignal) string {
	return fmt.Sprintf(
		"Your chart reading is ready. Phase signal: %s. Gain signal: %s. Risk signal: %s. Confidence: %.2f.",
		orDash(signal.PhaseSignal), orDash(signal.GainSignal), orDash(signal.RiskSignal), signal.Confidence)
}

// conversationalFallback produces a short warm acknowledgment of the
// problem from whatever profile fields are available. It never calls the
// compute collaborator and never attaches signals.
func (p *Pipeline) conversationalFallback(ctx context.Context, req *Request, language string) string {
	var known []string
	prof := req.Profile
	for _, f := range []struct{ label, value string }{
		{"Name", prof.Name},
		{"Age range", prof.AgeRange},
		{"Gender", prof.Gender},
		{"City", prof.City},
		{"Date of birth", prof.DOBDate},
		{"Birth place", prof.Place},
	} {
		if strings.TrimSpace(f.value) != "" {
			known = append(known, f.label+": "+f.value)
		}
	}

	system := criticalLanguageRule(language) + `Write one or two short warm sentences acknowledging the user's concern and saying we'll continue with what we've understood so far. No questions. No advice. No chart language.`
	user := "The user's concern: " + strings.TrimSpace(req.ProblemStatement)
	if len(known) > 0 {
		user += "\nWhat we know about them:\n" + strings.Join(known, "\n")
	}

	text, err := p.gen.Generate(ctx, &generation.Request{
		Model: p.insightModel,
		Input: []domain.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.5,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "conversational fallback generation failed, using fixed copy",
			"stage", "fallback",
			"error", err)
		return fallbackContinueCopy
	}
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return fallbackContinueCopy
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
