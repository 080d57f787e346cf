// Package identity implements the slot-filling resolver: pure functions over
// a visitor's identity snapshot that decide what to ask next, render the
// known/missing blocks for prompt construction, and decide whether a
// previously verified phone can be trusted without a fresh OTP.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/drishiq/concierge/internal/domain"
)

// slot pairs a field key with the label used in rendered prompt blocks.
type slot struct {
	key   string
	label string
}

// collectionOrder is the fixed elicitation order for the conversational
// slots. Email and phone follow these four and are never requested earlier.
var collectionOrder = []slot{
	{key: "name", label: "Name"},
	{key: "issue", label: "Why they came"},
	{key: "age", label: "Life stage"},
	{key: "gender", label: "Gender (if needed)"},
}

// ResolveNextField maps an identity snapshot to the single goal that applies
// to it. It is total: every snapshot maps to exactly one goal, and
// GoalComplete is returned only when all six fields are present.
// Whitespace-only values count as missing.
func ResolveNextField(state domain.IdentityState) domain.NextIdentityGoal {
	name := strings.TrimSpace(state.Name)
	problem := strings.TrimSpace(state.Problem)
	ageRange := strings.TrimSpace(state.AgeRange)
	gender := strings.TrimSpace(state.Gender)
	email := strings.TrimSpace(state.Email)
	phone := strings.TrimSpace(state.Phone)

	switch {
	case name == "":
		return domain.GoalName
	case problem == "":
		return domain.GoalProblem
	case ageRange == "":
		return domain.GoalAge
	case gender == "":
		return domain.GoalGenderConfirm
	case email == "":
		return domain.GoalEmail
	case phone == "":
		return domain.GoalPhone
	}
	return domain.GoalComplete
}

// CollectionState returns the already-collected and still-needed labels for
// the four conversational slots, both in collection order. It is used only
// for prompt rendering; goal decisions live in ResolveNextField.
func CollectionState(name, issue, age, gender string) (alreadyCollected, stillNeed []string) {
	values := map[string]string{
		"name":   strings.TrimSpace(name),
		"issue":  strings.TrimSpace(issue),
		"age":    strings.TrimSpace(age),
		"gender": strings.TrimSpace(gender),
	}
	for _, s := range collectionOrder {
		if values[s.key] != "" {
			alreadyCollected = append(alreadyCollected, s.label)
		} else {
			stillNeed = append(stillNeed, s.label)
		}
	}
	return alreadyCollected, stillNeed
}

// trustWindow is how long a verified phone stays trusted before the visitor
// must re-verify via OTP.
const trustWindow = 7 * 24 * time.Hour

// ShouldSkipOTP reports whether a verified phone can be trusted without
// re-verification: the record must be verified and updated within the last
// seven days. A nil record or an unparseable timestamp fails closed.
func ShouldSkipOTP(rec *domain.PhoneVerificationRecord, now time.Time) bool {
	if rec == nil || !rec.PhoneVerified {
		return false
	}
	updatedAt, err := time.Parse(time.RFC3339, rec.UpdatedAt)
	if err != nil {
		return false
	}
	return now.Sub(updatedAt) <= trustWindow
}

// ResolveVerificationGoal is the phone-verification checkpoint entered once
// the six identity fields are complete. It decides whether the session still
// needs a phone, is waiting on OTP, or is verified and ready for handoff.
// Snapshots still missing a pre-phone slot defer to ResolveNextField.
func ResolveVerificationGoal(state domain.IdentityState, rec *domain.PhoneVerificationRecord, now time.Time) domain.NextIdentityGoal {
	switch goal := ResolveNextField(state); goal {
	case domain.GoalComplete, domain.GoalPhone:
		// The checkpoint owns the phone slot from here on.
	default:
		return goal
	}
	if strings.TrimSpace(state.Phone) == "" {
		return domain.GoalPhoneRequired
	}
	if !ShouldSkipOTP(rec, now) {
		return domain.GoalAwaitingOTP
	}
	return domain.GoalVerifiedReadyForHandoff
}

// ValuesBlock renders the Known/Missing identity block inserted into system
// prompts. Known lines carry values; missing entries carry labels only.
// Email and phone are listed after the four conversational slots.
func ValuesBlock(state domain.IdentityState) string {
	name := strings.TrimSpace(state.Name)
	problem := strings.TrimSpace(state.Problem)
	ageRange := strings.TrimSpace(state.AgeRange)
	gender := strings.TrimSpace(state.Gender)
	city := strings.TrimSpace(state.City)
	email := strings.TrimSpace(state.Email)
	phone := strings.TrimSpace(state.Phone)

	var known []string
	if name != "" {
		known = append(known, fmt.Sprintf("* Name: %s", name))
	}
	if ageRange != "" {
		known = append(known, fmt.Sprintf("* Age range: %s", ageRange))
	}
	if gender != "" {
		known = append(known, fmt.Sprintf("* Gender: %s", gender))
	}
	if problem != "" {
		known = append(known, fmt.Sprintf("* Problem: %s", problem))
	}
	if city != "" {
		known = append(known, fmt.Sprintf("* City: %s", city))
	}
	if email != "" {
		known = append(known, fmt.Sprintf("* Email: %s", email))
	}
	if phone != "" {
		known = append(known, fmt.Sprintf("* Phone: %s", phone))
	}

	var missing []string
	if name == "" {
		missing = append(missing, "Name")
	}
	if problem == "" {
		missing = append(missing, "Why they came")
	}
	if ageRange == "" {
		missing = append(missing, "Life stage")
	}
	if gender == "" {
		missing = append(missing, "Gender (if needed)")
	}
	if email == "" {
		missing = append(missing, "Email")
	}
	if phone == "" {
		missing = append(missing, "Phone")
	}

	knownBlock := ""
	if len(known) > 0 {
		knownBlock = "Known identity details:\n" + strings.Join(known, "\n")
	}
	missingBlock := "Missing identity details: None."
	if len(missing) > 0 {
		var lines []string
		for _, l := range missing {
			lines = append(lines, "* "+l)
		}
		missingBlock = "Missing identity details:\n" + strings.Join(lines, "\n")
	}

	if knownBlock == "" {
		return missingBlock
	}
	return knownBlock + "\n\n" + missingBlock
}
