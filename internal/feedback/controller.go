package feedback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/intake"
	"github.com/fpang/review-drafter/internal/review"
)

// Fixed compose values sent with every draft request.
const (
	defaultPrice    = "great value"
	defaultTone     = "friendly"
	defaultLength   = "normal"
	defaultLanguage = "en"
)

// Settings are the per-deployment values the controller needs.
type Settings struct {
	Business       string
	ReviewURL      string
	ReviewPlatform string // e.g. "Google", used in the copy confirmation
	DefaultService string
	ThanksDelay    time.Duration
}

// Deps are the controller's collaborators. Drafter, Clipboard, Opener and
// Submitter are required.
type Deps struct {
	Drafter   Drafter
	Clipboard Clipboard
	Opener    Opener
	Submitter Submitter

	// OnChange, if set, is called with a fresh snapshot after every
	// asynchronous transition (thanks timer, late submit result). It is never
	// called with the controller lock held.
	OnChange func(Session)

	// AfterFunc schedules the thanks transition. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) *time.Timer
}

// DraftTicket identifies one in-flight draft request. A ticket from before a
// Reset is stale and its completion is discarded.
type DraftTicket struct {
	epoch   uint64
	Request review.DraftRequest
}

// Controller owns one Session and applies every transition under a lock.
// Each Reset advances an epoch; asynchronous completions that carry an older
// epoch are dropped.
type Controller struct {
	settings Settings
	deps     Deps

	mu    sync.Mutex
	s     Session
	epoch uint64
}

// NewController creates a controller positioned at the rating step.
func NewController(settings Settings, deps Deps) *Controller {
	if deps.AfterFunc == nil {
		deps.AfterFunc = time.AfterFunc
	}
	if settings.ReviewPlatform == "" {
		settings.ReviewPlatform = "Google"
	}
	c := &Controller{settings: settings, deps: deps}
	c.s = fresh()
	return c
}

func fresh() Session {
	return Session{ID: uuid.NewString(), Step: StepRating, Phase: PhaseChoose}
}

// Session returns a snapshot of the current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// Settings returns the deployment settings.
func (c *Controller) Settings() Settings { return c.settings }

// SubmitRating records score and routes to StepPositive (4–5) or
// StepNegative (1–3).
func (c *Controller) SubmitRating(score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, score)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Step != StepRating {
		return fmt.Errorf("%w: rating in %s", ErrWrongStep, c.s.Step)
	}

	c.s.Rating = score
	c.s.Status = Status{}
	if score >= 4 {
		c.s.Step = StepPositive
		c.s.Phase = PhaseChoose
	} else {
		c.s.Step = StepNegative
	}
	log.Info().Str("session", c.s.ID).Int("rating", score).Str("step", c.s.Step.String()).Msg("Rating submitted")
	return nil
}

// PostDirect opens the review page from the choose phase. State is unchanged.
func (c *Controller) PostDirect() error {
	c.mu.Lock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseChoose {
		defer c.mu.Unlock()
		return fmt.Errorf("%w: post direct in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.openReviewPage(epoch)
	return nil
}

// ShowCompose reveals the compose inputs.
func (c *Controller) ShowCompose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseChoose {
		return fmt.Errorf("%w: compose in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	c.s.Phase = PhaseCompose
	return nil
}

// BeginDraft marks a draft as in flight and returns the request to send.
// While one is in flight further calls fail with ErrDraftInFlight and no
// request is produced.
func (c *Controller) BeginDraft(in ComposeInputs) (DraftTicket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseCompose {
		return DraftTicket{}, fmt.Errorf("%w: draft in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	if c.s.Generating {
		return DraftTicket{}, ErrDraftInFlight
	}

	service := strings.TrimSpace(in.Service)
	if service == "" {
		service = c.settings.DefaultService
	}

	c.s.Generating = true
	c.s.Status = Status{Message: msgGenerating, Kind: StatusNeutral}
	return DraftTicket{
		epoch: c.epoch,
		Request: review.DraftRequest{
			Business:       c.settings.Business,
			Service:        service,
			PositivePoints: strings.TrimSpace(in.PositivePoints),
			Price:          defaultPrice,
			Tone:           defaultTone,
			Length:         defaultLength,
			Language:       defaultLanguage,
		},
	}, nil
}

// CompleteDraft applies the outcome of a draft request. transportErr non-nil
// means the request never completed. It reports whether the outcome was
// applied; a ticket from before the last Reset is discarded.
func (c *Controller) CompleteDraft(t DraftTicket, resp review.DraftResponse, transportErr error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.epoch != c.epoch {
		log.Debug().Str("session", c.s.ID).Msg("Discarding draft result from a reset session")
		return false
	}

	c.s.Generating = false
	switch {
	case transportErr != nil:
		log.Warn().Err(transportErr).Str("session", c.s.ID).Msg("Draft request failed")
		c.s.Status = Status{Message: msgNetworkError, Kind: StatusErr}
	case resp.Success && resp.Text != "":
		c.s.Draft = resp.Text
		c.s.Phase = PhaseDrafted
		c.s.Status = Status{Message: msgGenerated, Kind: StatusOK}
	default:
		msg := resp.Message
		if msg == "" {
			msg = msgDraftFallback
		}
		c.s.Status = Status{Message: msg, Kind: StatusErr}
	}
	return true
}

// GenerateDraft runs BeginDraft, the Drafter call and CompleteDraft in
// sequence. It blocks for the duration of the request.
func (c *Controller) GenerateDraft(ctx context.Context, in ComposeInputs) error {
	t, err := c.BeginDraft(in)
	if err != nil {
		return err
	}
	c.RunDraft(ctx, t)
	return nil
}

// RunDraft sends the ticket's request to the Drafter and applies the result.
// It reports whether the result was applied.
func (c *Controller) RunDraft(ctx context.Context, t DraftTicket) bool {
	resp, err := c.deps.Drafter.GenerateDraft(ctx, t.Request)
	return c.CompleteDraft(t, resp, err)
}

// EditDraft replaces the draft text. Any text, including empty, is accepted.
func (c *Controller) EditDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseDrafted {
		return fmt.Errorf("%w: edit in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	c.s.Draft = text
	return nil
}

// CopyDraft writes the draft to the clipboard and returns the resulting
// status. An empty draft fails without touching the clipboard.
func (c *Controller) CopyDraft() (Status, error) {
	c.mu.Lock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseDrafted {
		defer c.mu.Unlock()
		return Status{}, fmt.Errorf("%w: copy in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	text := c.s.Draft
	epoch := c.epoch
	c.mu.Unlock()

	var st Status
	switch {
	case strings.TrimSpace(text) == "":
		st = Status{Message: msgCopyEmpty, Kind: StatusErr}
	case c.deps.Clipboard.WriteAll(text) != nil:
		st = Status{Message: msgCopyFailed, Kind: StatusErr}
	default:
		st = Status{Message: fmt.Sprintf(msgCopiedFormat, c.settings.ReviewPlatform), Kind: StatusOK}
	}

	c.mu.Lock()
	if epoch == c.epoch {
		c.s.Status = st
	}
	c.mu.Unlock()
	return st, nil
}

// Publish opens the review page from the drafted phase. State is unchanged.
func (c *Controller) Publish() error {
	c.mu.Lock()
	if c.s.Step != StepPositive || c.s.Phase != PhaseDrafted {
		defer c.mu.Unlock()
		return fmt.Errorf("%w: publish in %s/%s", ErrWrongStep, c.s.Step, c.s.Phase)
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.openReviewPage(epoch)
	return nil
}

// openReviewPage opens the review URL. A failure only sets a status pointing
// at the URL, and only if no Reset happened since epoch was read.
func (c *Controller) openReviewPage(epoch uint64) {
	if err := c.deps.Opener.Open(c.settings.ReviewURL); err != nil {
		log.Warn().Err(err).Str("url", c.settings.ReviewURL).Msg("Failed to open review page")
		c.mu.Lock()
		if epoch == c.epoch {
			c.s.Status = Status{Message: fmt.Sprintf(msgOpenFailedFmt, c.settings.ReviewURL), Kind: StatusErr}
		}
		c.mu.Unlock()
	}
}

// SubmitFeedback validates form, sends it in the background and schedules
// the move to StepThanks after the configured delay. The move happens whether
// or not the send succeeds; send failures are only logged.
func (c *Controller) SubmitFeedback(ctx context.Context, form FeedbackForm) error {
	if err := validateForm(form); err != nil {
		return err
	}

	c.mu.Lock()
	if c.s.Step != StepNegative {
		defer c.mu.Unlock()
		return fmt.Errorf("%w: submit in %s", ErrWrongStep, c.s.Step)
	}
	if c.s.Submitting {
		defer c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.s.Submitting = true
	epoch := c.epoch
	c.mu.Unlock()

	var att *intake.Attachment
	if form.AttachmentPath != "" {
		a, err := intake.FileAttachment(form.AttachmentPath)
		if err != nil {
			c.mu.Lock()
			if epoch == c.epoch {
				c.s.Submitting = false
			}
			c.mu.Unlock()
			return err
		}
		att = a
	}

	c.mu.Lock()
	if epoch != c.epoch {
		defer c.mu.Unlock()
		return fmt.Errorf("%w: session reset during submit", ErrWrongStep)
	}
	id := c.s.ID
	sub := intake.Submission{
		Name:        strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		ServiceDate: strings.TrimSpace(form.ServiceDate),
		Feedback:    form.Feedback,
		Rating:      c.s.Rating,
		Attachment:  att,
	}
	c.mu.Unlock()

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		if err := c.deps.Submitter.Submit(sendCtx, sub); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("Feedback submission failed")
			return
		}
		log.Info().Str("session", id).Int("rating", sub.Rating).Msg("Feedback submitted")
	}()

	c.deps.AfterFunc(c.settings.ThanksDelay, func() { c.showThanks(epoch) })
	return nil
}

func (c *Controller) showThanks(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.s.Step != StepNegative {
		c.mu.Unlock()
		return
	}
	c.s.Step = StepThanks
	c.s.Submitting = false
	snap := c.s
	c.mu.Unlock()

	if c.deps.OnChange != nil {
		c.deps.OnChange(snap)
	}
}

func validateForm(f FeedbackForm) error {
	required := []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"feedback", f.Feedback},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}
	return nil
}

// Reset returns to StepRating and clears every field. Pending draft and
// thanks completions from before the reset are discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.s = fresh()
	log.Debug().Str("session", c.s.ID).Msg("Session reset")
}
