// Package domain holds the shared types of the intake orchestration layer:
// identity slot-filling state, tenant configuration, birth details, and the
// numeric signals returned by the compute collaborator.
package domain

// IdentityState is the accumulating snapshot of what is known about one
// visitor in one session. Empty string means unknown. The resolver never
// unsets a field; callers fill fields as the conversation progresses.
type IdentityState struct {
	Name     string `json:"name,omitempty"`
	Problem  string `json:"problem,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	City     string `json:"city,omitempty"`
}

// NextIdentityGoal is the single fact the conversation should elicit next.
type NextIdentityGoal string

const (
	GoalName          NextIdentityGoal = "name"
	GoalProblem       NextIdentityGoal = "problem"
	GoalAge           NextIdentityGoal = "age"
	GoalGenderConfirm NextIdentityGoal = "gender_confirm"
	GoalEmail         NextIdentityGoal = "email"
	GoalPhone         NextIdentityGoal = "phone"
	GoalComplete      NextIdentityGoal = "complete"

	// Phone verification checkpoint goals, entered only after GoalComplete.
	GoalPhoneRequired           NextIdentityGoal = "phone_required"
	GoalAwaitingOTP             NextIdentityGoal = "awaiting_otp"
	GoalVerifiedReadyForHandoff NextIdentityGoal = "verified_ready_for_handoff"
)

// PhoneVerificationRecord is the persisted verification status for a phone
// number. UpdatedAt is an RFC 3339 timestamp as stored; an unparseable value
// is treated as never verified.
type PhoneVerificationRecord struct {
	PhoneVerified bool   `json:"phone_verified"`
	UpdatedAt     string `json:"updated_at"`
}

// Message is one element of a text-generation input array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
