package tui

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/feedback"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.editor.SetWidth(max(msg.Width-8, 20))
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Session().Generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case draftDoneMsg:
		if s := m.ctrl.Session(); msg.applied && s.Phase == feedback.PhaseDrafted {
			m.editor.SetValue(s.Draft)
		}
		return m, nil

	case SessionChangedMsg:
		return m, nil

	case attachmentMsg:
		return m.submitComplaint(msg.path, msg.err)
	}

	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeEditing:
		return m.updateEditor(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	s := m.ctrl.Session()
	if s.Step != feedback.StepRating && key.Matches(msg, m.keys.Reset) {
		m.ctrl.Reset()
		m.editor.Reset()
		m.compose = nil
		m.complaint = nil
		m.notice = ""
		return m, nil
	}

	m.notice = ""
	switch s.Step {
	case feedback.StepRating:
		if key.Matches(msg, m.keys.Rate) {
			score, _ := strconv.Atoi(msg.String())
			if err := m.ctrl.SubmitRating(score); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			if score <= 3 {
				return m.openComplaintForm()
			}
		}

	case feedback.StepPositive:
		switch {
		case s.Phase == feedback.PhaseChoose && key.Matches(msg, m.keys.Direct):
			m.ctrl.PostDirect()
		case s.Phase == feedback.PhaseChoose && key.Matches(msg, m.keys.Compose):
			if err := m.ctrl.ShowCompose(); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			return m.openComposeForm()
		case s.Phase == feedback.PhaseCompose && key.Matches(msg, m.keys.Compose):
			if s.Generating {
				return m, nil
			}
			return m.openComposeForm()
		case s.Phase == feedback.PhaseDrafted && key.Matches(msg, m.keys.Edit):
			m.mode = ModeEditing
			m.editor.SetValue(s.Draft)
			return m, m.editor.Focus()
		case s.Phase == feedback.PhaseDrafted && key.Matches(msg, m.keys.Copy):
			m.ctrl.CopyDraft()
		case s.Phase == feedback.PhaseDrafted && key.Matches(msg, m.keys.Publish):
			m.ctrl.Publish()
		}

	case feedback.StepNegative:
		if !s.Submitting && key.Matches(msg, m.keys.Compose) {
			return m.openComplaintForm()
		}
	}
	return m, nil
}

func (m Model) openComposeForm() (tea.Model, tea.Cmd) {
	if m.compose == nil {
		m.compose = &ComposeFormModel{Service: m.ctrl.Settings().DefaultService}
	}
	m.form = newComposeForm(m.compose)
	m.formKind = formCompose
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) openComplaintForm() (tea.Model, tea.Cmd) {
	if m.complaint == nil {
		m.complaint = &ComplaintFormModel{}
	}
	m.form = newComplaintForm(m.complaint)
	m.formKind = formComplaint
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) closeForm() Model {
	m.form = nil
	m.formKind = formNone
	m.mode = ModeBrowse
	return m
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		kind := m.formKind
		m = m.closeForm()
		switch kind {
		case formCompose:
			return m.startDraft()
		case formComplaint:
			if m.complaint.Attach {
				return m, m.pickAttachment()
			}
			return m.submitComplaint("", nil)
		}
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

// startDraft begins a draft synchronously so duplicate requests are rejected
// before any command runs, then runs the request off the event loop.
func (m Model) startDraft() (tea.Model, tea.Cmd) {
	t, err := m.ctrl.BeginDraft(feedback.ComposeInputs{
		Service:        m.compose.Service,
		PositivePoints: m.compose.PositivePoints,
	})
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	run := func() tea.Msg {
		return draftDoneMsg{applied: ctrl.RunDraft(ctx, t)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) pickAttachment() tea.Cmd {
	pick := m.pickFile
	return func() tea.Msg {
		path, err := pick()
		return attachmentMsg{path: path, err: err}
	}
}

func (m Model) submitComplaint(path string, pickErr error) (tea.Model, tea.Cmd) {
	if pickErr != nil {
		path = ""
		if !errors.Is(pickErr, zenity.ErrCanceled) {
			log.Warn().Err(pickErr).Msg("Attachment picker failed")
			m.notice = "Couldn't open the file picker. Sending without an attachment."
		}
	}

	c := m.complaint
	err := m.ctrl.SubmitFeedback(m.ctx, feedback.FeedbackForm{
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		ServiceDate:    c.ServiceDate,
		Feedback:       c.Feedback,
		AttachmentPath: path,
	})
	if err != nil {
		m.notice = err.Error()
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Done) {
		m.editor.Blur()
		m.mode = ModeBrowse
		if err := m.ctrl.EditDraft(m.editor.Value()); err != nil {
			m.notice = err.Error()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}
