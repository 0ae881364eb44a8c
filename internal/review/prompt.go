package review

import (
	"strings"

	"github.com/fpang/review-drafter/internal/assets"
)

// Profile is the static description of the business being reviewed.
type Profile struct {
	Name        string
	Description string
}

// BuildPrompt renders the review instruction for req. The output depends only
// on its inputs. A non-empty req.Business overrides the profile name.
func BuildPrompt(p Profile, req DraftRequest) string {
	business := strings.TrimSpace(req.Business)
	if business == "" {
		business = p.Name
	}
	return assets.RenderReviewPrompt(assets.ReviewPromptData{
		Business:       business,
		Description:    p.Description,
		Service:        strings.TrimSpace(req.Service),
		PositivePoints: strings.TrimSpace(req.PositivePoints),
		Price:          strings.TrimSpace(req.Price),
		Hints:          strings.TrimSpace(req.Hints),
		Tone:           orDefault(req.Tone, DefaultTone),
		Length:         orDefault(req.Length, DefaultLength),
		Language:       orDefault(req.Language, DefaultLanguage),
	})
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
