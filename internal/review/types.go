// Package review drafts public reviews from structured customer hints by
// rendering a fixed instruction and sending it to a hosted text-generation
// model.
package review

// FailedMessage is the only failure text callers ever see. The underlying
// cause is logged, never returned.
const FailedMessage = "Failed to generate review"

// Defaults applied when the corresponding request field is empty.
const (
	DefaultTone     = "friendly"
	DefaultLength   = "normal"
	DefaultLanguage = "English"
)

// DraftRequest carries the customer's hints for one draft. All fields are
// free-form and optional. PositivePoints travels as "timeframe" on the wire,
// matching the widget's form field.
type DraftRequest struct {
	Business       string `json:"business"`
	Service        string `json:"service"`
	PositivePoints string `json:"timeframe"`
	Price          string `json:"price"`
	Hints          string `json:"hints"`
	Tone           string `json:"tone"`
	Length         string `json:"length"`
	Language       string `json:"language"`
}

// DraftResponse is either a success carrying the model's raw text or a
// failure carrying a fixed human-readable message. It doubles as the JSON body
// of POST /api/generate-review.
type DraftResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// Succeeded builds a success response.
func Succeeded(text string) DraftResponse {
	return DraftResponse{Success: true, Text: text}
}

// Failed builds a failure response.
func Failed(message string) DraftResponse {
	return DraftResponse{Success: false, Message: message}
}
