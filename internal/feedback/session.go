// Package feedback implements the customer feedback flow: a rating step that
// routes happy customers to a public review (optionally AI-drafted) and
// unhappy customers to a private complaint form.
//
//	Rating ─┬─ score ≥ 4 ─► Positive (Choose → Compose → Drafted)
//	        └─ score ≤ 3 ─► Negative ──submit──► Thanks
//
// Every step returns to Rating through Reset.
package feedback

import "errors"

// Step is the top-level position in the flow.
type Step int

const (
	StepRating Step = iota
	StepPositive
	StepNegative
	StepThanks
)

func (s Step) String() string {
	switch s {
	case StepPositive:
		return "positive"
	case StepNegative:
		return "negative"
	case StepThanks:
		return "thanks"
	default:
		return "rating"
	}
}

// Phase is the sub-phase of StepPositive. A single value means the compose
// inputs and the drafted review can never be visible together.
type Phase int

const (
	// PhaseChoose offers posting directly or composing with AI.
	PhaseChoose Phase = iota
	// PhaseCompose shows the AI compose inputs.
	PhaseCompose
	// PhaseDrafted shows the editable drafted review.
	PhaseDrafted
)

func (p Phase) String() string {
	switch p {
	case PhaseCompose:
		return "compose"
	case PhaseDrafted:
		return "drafted"
	default:
		return "choose"
	}
}

// StatusKind colours a status message.
type StatusKind int

const (
	StatusNeutral StatusKind = iota
	StatusOK
	StatusErr
)

// Status is a transient, user-facing message.
type Status struct {
	Message string
	Kind    StatusKind
}

// Session is a snapshot of one customer's pass through the flow.
type Session struct {
	ID     string
	Rating int // 1–5, 0 when unset
	Step   Step
	Phase  Phase
	// Draft is free text once populated; it is never re-validated.
	Draft      string
	Generating bool
	Submitting bool
	Status     Status
}

// ComposeInputs are the customer's hints for an AI draft.
type ComposeInputs struct {
	Service        string
	PositivePoints string
}

// FeedbackForm is the negative-path complaint form. Name, Email and Feedback
// are required.
type FeedbackForm struct {
	Name           string
	Email          string
	Phone          string
	ServiceDate    string
	Feedback       string
	AttachmentPath string
}

var (
	// ErrWrongStep is returned when an action is not available in the current step or phase.
	ErrWrongStep = errors.New("action not available in the current step")
	// ErrInvalidRating is returned for scores outside 1–5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrDraftInFlight is returned when a draft is already being generated.
	ErrDraftInFlight = errors.New("a draft is already being generated")
	// ErrSubmitInFlight is returned when the feedback form was already submitted.
	ErrSubmitInFlight = errors.New("feedback is already being submitted")
	// ErrMissingField is returned when a required form field is empty.
	ErrMissingField = errors.New("required field is empty")
)

// User-facing status messages.
const (
	msgGenerating    = "Creating a simple draft based on your details…"
	msgGenerated     = "Draft generated. Feel free to tweak it before publishing."
	msgDraftFallback = "Couldn't generate a draft. Please try again."
	msgNetworkError  = "Network error. Please try again."
	msgCopyEmpty     = "Please write (or generate) your review first."
	msgCopyFailed    = "Couldn't copy automatically. Please copy manually."
	msgCopiedFormat  = "Copied to clipboard. Paste it on the %s page."
	msgOpenFailedFmt = "Couldn't open the review page. Please visit %s"
)
