// Package tui is a terminal front end for the feedback flow. It renders the
// controller's session and turns key presses into controller operations.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/ncruces/zenity"

	"github.com/fpang/review-drafter/internal/feedback"
)

type Mode int

const (
	ModeBrowse Mode = iota
	ModeForm
	ModeEditing
)

type formKind int

const (
	formNone formKind = iota
	formCompose
	formComplaint
)

type ComposeFormModel struct {
	Service        string
	PositivePoints string
}

type ComplaintFormModel struct {
	Name        string
	Email       string
	Phone       string
	ServiceDate string
	Feedback    string
	Attach      bool
}

// FilePicker asks the user for an attachment path. A canceled pick returns
// zenity.ErrCanceled.
type FilePicker func() (string, error)

// Options configure a Model.
type Options struct {
	PickFile FilePicker
}

type Model struct {
	ctx       context.Context
	ctrl      *feedback.Controller
	keys      KeyMap
	help      help.Model
	spinner   spinner.Model
	editor    textarea.Model
	form      *huh.Form
	formKind  formKind
	compose   *ComposeFormModel
	complaint *ComplaintFormModel
	mode      Mode
	pickFile  FilePicker
	notice    string // local error not tracked by the controller
	width     int
	quitting  bool
}

func NewModel(ctx context.Context, ctrl *feedback.Controller, opts Options) Model {
	if opts.PickFile == nil {
		opts.PickFile = pickWithDialog
	}

	ed := textarea.New()
	ed.Placeholder = "Your review"
	ed.CharLimit = 0
	ed.SetHeight(8)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		editor:   ed,
		mode:     ModeBrowse,
		pickFile: opts.PickFile,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// ShortHelp lists the bindings available in the current step.
func (m Model) ShortHelp() []key.Binding {
	if m.mode == ModeEditing {
		return []key.Binding{m.keys.Done}
	}
	s := m.ctrl.Session()
	var keys []key.Binding
	switch s.Step {
	case feedback.StepRating:
		keys = append(keys, m.keys.Rate)
	case feedback.StepPositive:
		switch s.Phase {
		case feedback.PhaseChoose:
			keys = append(keys, m.keys.Direct, m.keys.Compose)
		case feedback.PhaseCompose:
			keys = append(keys, m.keys.Compose)
		case feedback.PhaseDrafted:
			keys = append(keys, m.keys.Edit, m.keys.Copy, m.keys.Publish)
		}
		keys = append(keys, m.keys.Reset)
	case feedback.StepNegative:
		keys = append(keys, m.keys.Compose, m.keys.Reset)
	case feedback.StepThanks:
		keys = append(keys, m.keys.Reset)
	}
	return append(keys, m.keys.Quit, m.keys.Help)
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// SessionChangedMsg carries a snapshot produced outside the event loop.
type SessionChangedMsg struct {
	Session feedback.Session
}

type draftDoneMsg struct {
	applied bool
}

type attachmentMsg struct {
	path string
	err  error
}

// Bridge forwards asynchronous controller transitions to a running program.
// Pass Bridge.OnChange as feedback.Deps.OnChange and Attach the program once
// it exists.
type Bridge struct {
	mu sync.Mutex
	p  *tea.Program
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p = p
}

func (b *Bridge) OnChange(s feedback.Session) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p != nil {
		p.Send(SessionChangedMsg{Session: s})
	}
}

func pickWithDialog() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Attach a photo or receipt"),
		zenity.FileFilters{
			{
				Name:     "Photos and documents",
				Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.heic", "*.webp", "*.pdf"},
			},
		},
	)
}
