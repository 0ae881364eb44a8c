// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// reviewDraftTemplate is the instruction sent to the text-generation model
// when drafting a public review.
//
//go:embed prompts/review-draft.txt
var reviewDraftTemplate string

var reviewDraftTmpl = template.Must(template.New("review-draft").Parse(reviewDraftTemplate))

// ReviewPromptData holds the dynamic data injected into the review template.
// Empty optional fields drop their bullet from the rendered prompt.
type ReviewPromptData struct {
	Business       string
	Description    string
	Service        string
	PositivePoints string
	Price          string
	Hints          string
	Tone           string
	Length         string
	Language       string
}

// RenderReviewPrompt renders the review-draft template.
func RenderReviewPrompt(data ReviewPromptData) string {
	var buf bytes.Buffer
	// The template only reads string fields, so execution cannot fail
	// part-way; whatever was rendered is returned.
	_ = reviewDraftTmpl.Execute(&buf, data)
	return buf.String()
}
