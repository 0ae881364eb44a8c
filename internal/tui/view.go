package tui

import (
	"fmt"
	"strings"

	"github.com/fpang/review-drafter/internal/feedback"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.ctrl.Session()
	business := m.ctrl.Settings().Business

	var b strings.Builder
	b.WriteString(titleStyle.Render(business))
	b.WriteString("\n")

	if m.mode == ModeForm && m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("esc to cancel"))
		return docStyle.Render(b.String())
	}

	switch s.Step {
	case feedback.StepRating:
		b.WriteString(fmt.Sprintf("How was your experience at %s?\n\n", business))
		b.WriteString(starStyle.Render("☆ ☆ ☆ ☆ ☆"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Press 1-5 to rate."))

	case feedback.StepPositive:
		b.WriteString(starStyle.Render(stars(s.Rating)))
		b.WriteString("\n\nThanks! Would you share that on " + m.ctrl.Settings().ReviewPlatform + "?\n\n")
		switch s.Phase {
		case feedback.PhaseChoose:
			b.WriteString("  p  Post a review directly\n")
			b.WriteString("  c  Compose a review with AI\n")
		case feedback.PhaseCompose:
			if s.Generating {
				b.WriteString(m.spinner.View() + " ")
			} else {
				b.WriteString("  c  Enter service details and generate a draft\n")
			}
		case feedback.PhaseDrafted:
			if m.mode == ModeEditing {
				b.WriteString(m.editor.View())
			} else {
				b.WriteString(draftStyle.Render(s.Draft))
			}
			b.WriteString("\n")
		}

	case feedback.StepNegative:
		b.WriteString(starStyle.Render(stars(s.Rating)))
		b.WriteString("\n\nWe're sorry to hear that. Tell us what happened and we'll make it right.\n\n")
		if s.Submitting {
			b.WriteString(mutedStyle.Render("Sending…"))
		} else {
			b.WriteString("  c  Open the feedback form\n")
		}

	case feedback.StepThanks:
		b.WriteString(okStyle.Render("Thank you! Your feedback has been sent to our team."))
		b.WriteString("\n")
	}

	if line := statusLine(s.Status); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(dangerStyle.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m))
	return docStyle.Render(b.String())
}

func stars(n int) string {
	n = min(max(n, 0), 5)
	return strings.Repeat("★ ", n) + strings.Repeat("☆ ", 5-n)
}

func statusLine(st feedback.Status) string {
	switch {
	case st.Message == "":
		return ""
	case st.Kind == feedback.StatusOK:
		return okStyle.Render(st.Message)
	case st.Kind == feedback.StatusErr:
		return dangerStyle.Render(st.Message)
	default:
		return mutedStyle.Render(st.Message)
	}
}
