package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func newComposeForm(fm *ComposeFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What service did you receive?").
				Placeholder("Dinner").
				Value(&fm.Service),
			huh.NewInput().
				Title("What stood out?").
				Placeholder("Price, Professionalism").
				Value(&fm.PositivePoints),
		),
	).WithTheme(huh.ThemeDracula())
}

func newComplaintForm(fm *ComplaintFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(func(s string) error {
					if err := required("email")(s); err != nil {
						return err
					}
					if !strings.Contains(s, "@") {
						return errors.New("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Phone").
				Placeholder("(555) 555-5555").
				Value(&fm.Phone),
			huh.NewInput().
				Title("Date of service").
				Description("YYYY-MM-DD, optional").
				Value(&fm.ServiceDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewText().
				Title("What went wrong?").
				Value(&fm.Feedback).
				Validate(required("feedback")),
			huh.NewConfirm().
				Title("Attach a photo or receipt?").
				Value(&fm.Attach),
		),
	).WithTheme(huh.ThemeDracula())
}
