package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/drishiq/concierge/internal/domain"
	"github.com/drishiq/concierge/internal/geo"
	"github.com/drishiq/concierge/internal/greeter"
	"github.com/drishiq/concierge/internal/identity"
	"github.com/drishiq/concierge/internal/lens"
	"github.com/drishiq/concierge/internal/tenant"
)

// Handler bundles the orchestration components behind the HTTP routes.
type Handler struct {
	resolver *tenant.Resolver
	builder  *greeter.Builder
	pipeline *lens.Pipeline
	geo      geoClient
	now      func() time.Time
}

// geoClient is the subset of the geocoding client the lens handler needs.
type geoClient interface {
	ResolvePlace(ctx context.Context, city, state, country string) (*geo.Place, error)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithGeo enables birth-place geocoding for the lens route.
func WithGeo(geo geoClient) HandlerOption {
	return func(h *Handler) {
		h.geo = geo
	}
}

// WithClock overrides the handler clock.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler wires the orchestration components into one HTTP handler set.
func NewHandler(resolver *tenant.Resolver, builder *greeter.Builder, pipeline *lens.Pipeline, opts ...HandlerOption) *Handler {
	h := &Handler{
		resolver: resolver,
		builder:  builder,
		pipeline: pipeline,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type greetingResponse struct {
	Reply     string `json:"reply"`
	Goal      string `json:"goal"`
	TimeOfDay string `json:"time_of_day"`
}

// HandleGreeting renders and generates the first message of a session.
// Query params: tenant_id, lang, tz_offset_minutes (visitor-local offset).
func (h *Handler) HandleGreeting(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := q.Get("tenant_id")
	AddLogField(r.Context(), "tenant_id", tenantID)

	localNow := h.now().UTC()
	if off, err := strconv.Atoi(q.Get("tz_offset_minutes")); err == nil {
		localNow = localNow.Add(time.Duration(off) * time.Minute)
	}
	timeOfDay := greeter.TimeOfDay(localNow)

	cfg := h.resolver.GetResolvedTenantConfig(r.Context(), tenantID, "greeting")
	in := greeter.PromptInput{
		Goal:             domain.GoalName,
		AlreadyCollected: []string{},
		Language:         greeter.NormalizeLanguage(q.Get("lang")),
		Rapport:          &greeter.RapportContext{TimeOfDay: timeOfDay, VisitCount: 1},
	}

	reply := h.builder.Generate(r.Context(), greeter.FirstGreetingPrompt, in, cfg.AI)
	writeJSON(w, http.StatusOK, greetingResponse{
		Reply:     reply,
		Goal:      string(domain.GoalName),
		TimeOfDay: timeOfDay,
	})
}

type intakeRequest struct {
	TenantID          string                          `json:"tenant_id"`
	StageID           string                          `json:"stage_id,omitempty"`
	Language          string                          `json:"language,omitempty"`
	UserMessage       string                          `json:"user_message,omitempty"`
	Identity          domain.IdentityState            `json:"identity"`
	PhoneVerification *domain.PhoneVerificationRecord `json:"phone_verification,omitempty"`
	IdentityConfirmed bool                            `json:"identity_confirmed,omitempty"`
	Rapport           *greeter.RapportContext         `json:"rapport,omitempty"`
}

type intakeResponse struct {
	Goal             string   `json:"goal"`
	Reply            string   `json:"reply"`
	AlreadyCollected []string `json:"already_collected"`
	StillNeed        []string `json:"still_need"`
}

// HandleIntakeNext resolves the next identity goal for a snapshot and
// generates the turn's reply.
func (h *Handler) HandleIntakeNext(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	AddLogField(r.Context(), "tenant_id", req.TenantID)

	goal := identity.ResolveVerificationGoal(req.Identity, req.PhoneVerification, h.now())
	already, need := identity.CollectionState(req.Identity.Name, req.Identity.Problem, req.Identity.AgeRange, req.Identity.Gender)

	cfg := h.resolver.GetResolvedTenantConfig(r.Context(), req.TenantID, req.StageID)
	in := greeter.PromptInput{
		Goal:              goal,
		AlreadyCollected:  already,
		StillNeed:         need,
		ValuesBlock:       identity.ValuesBlock(req.Identity),
		Language:          greeter.NormalizeLanguage(req.Language),
		Rapport:           req.Rapport,
		IdentityConfirmed: req.IdentityConfirmed,
	}

	userPrompt := req.UserMessage
	if userPrompt == "" {
		userPrompt = "Continue the intake conversation."
	}
	reply := h.builder.Generate(r.Context(), userPrompt, in, cfg.AI)

	writeJSON(w, http.StatusOK, intakeResponse{
		Goal:             string(goal),
		Reply:            reply,
		AlreadyCollected: already,
		StillNeed:        need,
	})
}

type lensRequest struct {
	TenantID         string               `json:"tenant_id"`
	Language         string               `json:"language,omitempty"`
	ProblemStatement string               `json:"problem_statement"`
	Birth            *domain.BirthDetails `json:"birth,omitempty"`
	BirthText        string               `json:"birth_text,omitempty"`
	Profile          lens.Profile         `json:"profile"`
}

type lensResponse struct {
	Text             string              `json:"text"`
	Signals          *domain.AstroSignal `json:"signals,omitempty"`
	FromComputeLayer bool                `json:"from_compute_layer"`
}

// HandleLens runs the destiny-lens pipeline. A birth place without
// coordinates is geocoded first; a geocoding failure leaves the tuple
// incomplete and the pipeline takes its conversational fallback.
func (h *Handler) HandleLens(w http.ResponseWriter, r *http.Request) {
	var req lensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	AddLogField(r.Context(), "tenant_id", req.TenantID)

	birth := req.Birth
	if birth == nil && req.BirthText != "" {
		birth = domain.ParseBirthDetails(req.BirthText)
	}
	if birth != nil && !birth.ComputeReady() && h.geo != nil && birth.City != "" {
		if place, err := h.geo.ResolvePlace(r.Context(), birth.City, birth.State, birth.Country); err == nil {
			birth.Latitude = &place.Latitude
			birth.Longitude = &place.Longitude
			birth.Timezone = place.Timezone
		} else {
			AddError(r.Context(), err)
		}
	}

	result := h.pipeline.Run(r.Context(), &lens.Request{
		ProblemStatement: req.ProblemStatement,
		Birth:            birth,
		Language:         req.Language,
		Profile:          req.Profile,
	})

	writeJSON(w, http.StatusOK, lensResponse{
		Text:             result.Text,
		Signals:          result.Signals,
		FromComputeLayer: result.FromComputeLayer,
	})
}

// HandleInvalidateTenant drops the cached configuration for one tenant.
func (h *Handler) HandleInvalidateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "tenant id required", http.StatusBadRequest)
		return
	}
	AddLogField(r.Context(), "tenant_id", tenantID)
	h.resolver.Invalidate(tenantID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated", "tenant_id": tenantID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
