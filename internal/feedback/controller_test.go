package feedback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fpang/review-drafter/internal/intake"
	"github.com/fpang/review-drafter/internal/review"
)

type fakeDrafter struct {
	mu    sync.Mutex
	calls []review.DraftRequest
	resp  review.DraftResponse
	err   error
	// gate, when set, blocks GenerateDraft until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (d *fakeDrafter) GenerateDraft(_ context.Context, req review.DraftRequest) (review.DraftResponse, error) {
	d.mu.Lock()
	d.calls = append(d.calls, req)
	d.mu.Unlock()
	if d.entered != nil {
		d.entered <- struct{}{}
	}
	if d.gate != nil {
		<-d.gate
	}
	return d.resp, d.err
}

func (d *fakeDrafter) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type fakeClipboard struct {
	texts []string
	err   error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.texts = append(c.texts, text)
	return c.err
}

type fakeOpener struct {
	urls []string
	err  error
	// during, when set, runs while the page is opening.
	during func()
}

func (o *fakeOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	if o.during != nil {
		o.during()
	}
	return o.err
}

type fakeSubmitter struct {
	err  error
	done chan intake.Submission
}

func (s *fakeSubmitter) Submit(_ context.Context, sub intake.Submission) error {
	s.done <- sub
	return s.err
}

// manualTimer captures the scheduled thanks transition so tests fire it.
type manualTimer struct {
	delay time.Duration
	fire  func()
}

func (m *manualTimer) afterFunc(d time.Duration, f func()) *time.Timer {
	m.delay, m.fire = d, f
	return nil
}

const testReviewURL = "https://g.page/r/blu-steakhouse/review"

type harness struct {
	c         *Controller
	drafter   *fakeDrafter
	clipboard *fakeClipboard
	opener    *fakeOpener
	submitter *fakeSubmitter
	timer     *manualTimer
}

func newHarness() *harness {
	h := &harness{
		drafter:   &fakeDrafter{resp: review.Succeeded("Great service...")},
		clipboard: &fakeClipboard{},
		opener:    &fakeOpener{},
		submitter: &fakeSubmitter{done: make(chan intake.Submission, 1)},
		timer:     &manualTimer{},
	}
	h.c = NewController(Settings{
		Business:       "Blu' Steakhouse",
		ReviewURL:      testReviewURL,
		DefaultService: "Dinner",
		ThanksDelay:    time.Second,
	}, Deps{
		Drafter:   h.drafter,
		Clipboard: h.clipboard,
		Opener:    h.opener,
		Submitter: h.submitter,
		AfterFunc: h.timer.afterFunc,
	})
	return h
}

func (h *harness) toDrafted(t *testing.T) {
	t.Helper()
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())
	must(t, h.c.GenerateDraft(context.Background(), ComposeInputs{Service: "AC repair", PositivePoints: "fast, professional"}))
	if s := h.c.Session(); s.Phase != PhaseDrafted {
		t.Fatalf("expected drafted phase, got %s (%q)", s.Phase, s.Status.Message)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitRating_Routes(t *testing.T) {
	tests := []struct {
		score int
		want  Step
	}{
		{1, StepNegative},
		{2, StepNegative},
		{3, StepNegative},
		{4, StepPositive},
		{5, StepPositive},
	}
	for _, tt := range tests {
		h := newHarness()
		must(t, h.c.SubmitRating(tt.score))
		s := h.c.Session()
		if s.Step != tt.want || s.Rating != tt.score {
			t.Errorf("SubmitRating(%d) -> %s rating %d, want %s", tt.score, s.Step, s.Rating, tt.want)
		}
		if tt.want == StepPositive && s.Phase != PhaseChoose {
			t.Errorf("SubmitRating(%d) phase = %s, want choose", tt.score, s.Phase)
		}
	}
}

func TestSubmitRating_Invalid(t *testing.T) {
	h := newHarness()
	for _, score := range []int{0, 6, -1} {
		if err := h.c.SubmitRating(score); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("SubmitRating(%d) err = %v, want ErrInvalidRating", score, err)
		}
	}
	if h.c.Session().Step != StepRating {
		t.Error("invalid rating must not leave the rating step")
	}
}

func TestSubmitRating_WrongStep(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(4))
	if err := h.c.SubmitRating(2); !errors.Is(err, ErrWrongStep) {
		t.Errorf("expected ErrWrongStep, got %v", err)
	}
}

func TestPostDirect_OpensReviewURL(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(5))
	before := h.c.Session()
	must(t, h.c.PostDirect())

	if len(h.opener.urls) != 1 || h.opener.urls[0] != testReviewURL {
		t.Errorf("opened %v", h.opener.urls)
	}
	if h.c.Session() != before {
		t.Error("post direct must not change state")
	}
}

func TestGenerateDraft_RequestShape(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)

	if h.drafter.count() != 1 {
		t.Fatalf("expected one upstream call, got %d", h.drafter.count())
	}
	got := h.drafter.calls[0]
	want := review.DraftRequest{
		Business:       "Blu' Steakhouse",
		Service:        "AC repair",
		PositivePoints: "fast, professional",
		Price:          "great value",
		Tone:           "friendly",
		Length:         "normal",
		Language:       "en",
	}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
	s := h.c.Session()
	if s.Draft != "Great service..." || s.Generating || s.Status.Kind != StatusOK {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestGenerateDraft_DefaultService(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(4))
	must(t, h.c.ShowCompose())
	must(t, h.c.GenerateDraft(context.Background(), ComposeInputs{}))
	if got := h.drafter.calls[0].Service; got != "Dinner" {
		t.Errorf("service = %q, want default", got)
	}
}

func TestGenerateDraft_DuplicateSuppressed(t *testing.T) {
	h := newHarness()
	h.drafter.gate = make(chan struct{})
	h.drafter.entered = make(chan struct{}, 1)
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())

	done := make(chan error, 1)
	go func() {
		done <- h.c.GenerateDraft(context.Background(), ComposeInputs{Service: "dinner"})
	}()
	<-h.drafter.entered

	if s := h.c.Session(); !s.Generating || s.Status.Message != msgGenerating {
		t.Errorf("expected generating status, got %+v", s)
	}
	if err := h.c.GenerateDraft(context.Background(), ComposeInputs{Service: "dinner"}); !errors.Is(err, ErrDraftInFlight) {
		t.Errorf("second call err = %v, want ErrDraftInFlight", err)
	}

	close(h.drafter.gate)
	must(t, <-done)
	if h.drafter.count() != 1 {
		t.Errorf("expected exactly one upstream call, got %d", h.drafter.count())
	}
}

func TestGenerateDraft_ProviderFailure(t *testing.T) {
	h := newHarness()
	h.drafter.resp = review.Failed(review.FailedMessage)
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())
	must(t, h.c.GenerateDraft(context.Background(), ComposeInputs{}))

	s := h.c.Session()
	if s.Phase != PhaseCompose || s.Generating {
		t.Errorf("failure must stay in compose, got %s generating=%v", s.Phase, s.Generating)
	}
	if s.Status.Message != review.FailedMessage || s.Status.Kind != StatusErr {
		t.Errorf("unexpected status %+v", s.Status)
	}
}

func TestGenerateDraft_NetworkError(t *testing.T) {
	h := newHarness()
	h.drafter.err = errors.New("connection refused")
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())
	must(t, h.c.GenerateDraft(context.Background(), ComposeInputs{}))

	if s := h.c.Session(); s.Status.Message != msgNetworkError || s.Phase != PhaseCompose {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestGenerateDraft_EmptyFailureMessage(t *testing.T) {
	h := newHarness()
	h.drafter.resp = review.DraftResponse{}
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())
	must(t, h.c.GenerateDraft(context.Background(), ComposeInputs{}))

	if s := h.c.Session(); s.Status.Message != msgDraftFallback {
		t.Errorf("status = %q, want fallback", s.Status.Message)
	}
}

func TestGenerateDraft_WrongPhase(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(5))
	if err := h.c.GenerateDraft(context.Background(), ComposeInputs{}); !errors.Is(err, ErrWrongStep) {
		t.Errorf("expected ErrWrongStep before compose, got %v", err)
	}
	if h.drafter.count() != 0 {
		t.Error("drafter must not be called")
	}
}

func TestCompleteDraft_AfterResetDiscarded(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(5))
	must(t, h.c.ShowCompose())
	ticket, err := h.c.BeginDraft(ComposeInputs{Service: "dinner"})
	must(t, err)

	h.c.Reset()
	if h.c.CompleteDraft(ticket, review.Succeeded("late text"), nil) {
		t.Error("stale completion must be discarded")
	}
	s := h.c.Session()
	if s.Step != StepRating || s.Draft != "" || s.Generating || s.Status.Message != "" {
		t.Errorf("reset session was modified: %+v", s)
	}
}

func TestEditDraft(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)
	must(t, h.c.EditDraft("The ribeye was perfect."))
	if got := h.c.Session().Draft; got != "The ribeye was perfect." {
		t.Errorf("draft = %q", got)
	}
	must(t, h.c.EditDraft(""))
	if h.c.Session().Draft != "" {
		t.Error("empty edit must be accepted")
	}
}

func TestCopyDraft(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)

	st, err := h.c.CopyDraft()
	must(t, err)
	if st.Kind != StatusOK || st.Message != "Copied to clipboard. Paste it on the Google page." {
		t.Errorf("unexpected status %+v", st)
	}
	if len(h.clipboard.texts) != 1 || h.clipboard.texts[0] != "Great service..." {
		t.Errorf("clipboard got %v", h.clipboard.texts)
	}
}

func TestCopyDraft_KeepsEditedTextVerbatim(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)
	const edited = "  Great steak.\n\n- Jane\n"
	must(t, h.c.EditDraft(edited))

	_, err := h.c.CopyDraft()
	must(t, err)
	if len(h.clipboard.texts) != 1 || h.clipboard.texts[0] != edited {
		t.Errorf("clipboard got %q, want %q", h.clipboard.texts, edited)
	}
}

func TestCopyDraft_EmptySkipsClipboard(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)
	must(t, h.c.EditDraft("   "))

	st, err := h.c.CopyDraft()
	must(t, err)
	if st.Kind != StatusErr || st.Message != msgCopyEmpty {
		t.Errorf("unexpected status %+v", st)
	}
	if len(h.clipboard.texts) != 0 {
		t.Error("clipboard must not be called for an empty draft")
	}
}

func TestCopyDraft_ClipboardFailure(t *testing.T) {
	h := newHarness()
	h.clipboard.err = errors.New("no display")
	h.toDrafted(t)

	st, err := h.c.CopyDraft()
	must(t, err)
	if st.Kind != StatusErr || st.Message != msgCopyFailed {
		t.Errorf("unexpected status %+v", st)
	}
	if h.c.Session().Status != st {
		t.Error("copy status must be recorded on the session")
	}
}

func TestPublish_LeavesStateUnchanged(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)
	must(t, h.c.EditDraft("Great service, fast and professional."))
	before := h.c.Session()

	must(t, h.c.Publish())
	if len(h.opener.urls) != 1 || h.opener.urls[0] != testReviewURL {
		t.Errorf("opened %v", h.opener.urls)
	}
	if h.c.Session() != before {
		t.Errorf("publish changed state: %+v", h.c.Session())
	}
}

func TestPublish_OpenFailureSetsStatus(t *testing.T) {
	h := newHarness()
	h.opener.err = errors.New("no browser")
	h.toDrafted(t)

	must(t, h.c.Publish())
	s := h.c.Session()
	if s.Status.Kind != StatusErr || s.Phase != PhaseDrafted || s.Draft != "Great service..." {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestPublish_OpenFailureAfterResetDiscarded(t *testing.T) {
	h := newHarness()
	h.opener.err = errors.New("no browser")
	h.toDrafted(t)
	h.opener.during = h.c.Reset

	must(t, h.c.Publish())
	if s := h.c.Session(); s.Step != StepRating || s.Status != (Status{}) {
		t.Errorf("stale open failure applied to new session: %+v", s)
	}
}

func TestSubmitFeedback_MovesToThanksDespiteFailure(t *testing.T) {
	h := newHarness()
	h.submitter.err = errors.New("formspree down")
	must(t, h.c.SubmitRating(2))

	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Feedback: "Steak was overcooked",
	}))

	sub := <-h.submitter.done
	if sub.Rating != 2 || sub.Name != "Jane Doe" || sub.Feedback != "Steak was overcooked" {
		t.Errorf("unexpected submission %+v", sub)
	}
	if h.c.Session().Step != StepNegative {
		t.Error("thanks must wait for the delay")
	}
	if h.timer.delay != time.Second {
		t.Errorf("delay = %v, want 1s", h.timer.delay)
	}

	h.timer.fire()
	if s := h.c.Session(); s.Step != StepThanks {
		t.Errorf("expected thanks, got %s", s.Step)
	}
}

func TestSubmitFeedback_Attachment(t *testing.T) {
	h := newHarness()
	path := filepath.Join(t.TempDir(), "receipt.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	must(t, h.c.SubmitRating(1))
	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{
		Name: "A", Email: "a@example.com", Feedback: "cold", AttachmentPath: path,
	}))

	sub := <-h.submitter.done
	if sub.Attachment == nil || sub.Attachment.Filename != "receipt.jpg" {
		t.Errorf("unexpected attachment %+v", sub.Attachment)
	}
}

func TestSubmitFeedback_Validation(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(3))

	forms := []FeedbackForm{
		{Email: "a@example.com", Feedback: "x"},
		{Name: "A", Feedback: "x"},
		{Name: "A", Email: "a@example.com", Feedback: "  "},
	}
	for _, f := range forms {
		if err := h.c.SubmitFeedback(context.Background(), f); !errors.Is(err, ErrMissingField) {
			t.Errorf("SubmitFeedback(%+v) err = %v, want ErrMissingField", f, err)
		}
	}
	if h.timer.fire != nil {
		t.Error("invalid form must not schedule thanks")
	}
}

func TestSubmitFeedback_Duplicate(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(2))
	form := FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x"}
	must(t, h.c.SubmitFeedback(context.Background(), form))
	<-h.submitter.done

	if err := h.c.SubmitFeedback(context.Background(), form); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}
}

func TestSubmitFeedback_GuardsBeforeReadingAttachment(t *testing.T) {
	h := newHarness()
	missing := filepath.Join(t.TempDir(), "missing.jpg")
	form := FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x", AttachmentPath: missing}

	if err := h.c.SubmitFeedback(context.Background(), form); !errors.Is(err, ErrWrongStep) {
		t.Errorf("expected ErrWrongStep before the file is read, got %v", err)
	}

	must(t, h.c.SubmitRating(2))
	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x"}))
	<-h.submitter.done
	if err := h.c.SubmitFeedback(context.Background(), form); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight before the file is read, got %v", err)
	}
}

func TestSubmitFeedback_UnreadableAttachmentAllowsRetry(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(2))
	form := FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x", AttachmentPath: filepath.Join(t.TempDir(), "missing.jpg")}

	if err := h.c.SubmitFeedback(context.Background(), form); err == nil {
		t.Fatal("expected error for unreadable attachment")
	}
	if h.c.Session().Submitting {
		t.Error("failed attachment read must clear submitting")
	}
	form.AttachmentPath = ""
	must(t, h.c.SubmitFeedback(context.Background(), form))
	<-h.submitter.done
}

func TestSubmitFeedback_ThanksAfterResetDiscarded(t *testing.T) {
	h := newHarness()
	must(t, h.c.SubmitRating(2))
	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x"}))
	<-h.submitter.done

	h.c.Reset()
	h.timer.fire()
	if s := h.c.Session(); s.Step != StepRating {
		t.Errorf("stale thanks applied: %s", s.Step)
	}
}

func TestOnChange_CalledForThanks(t *testing.T) {
	h := newHarness()
	var got []Step
	h.c.deps.OnChange = func(s Session) { got = append(got, s.Step) }
	must(t, h.c.SubmitRating(2))
	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x"}))
	<-h.submitter.done
	h.timer.fire()

	if len(got) != 1 || got[0] != StepThanks {
		t.Errorf("OnChange calls = %v", got)
	}
}

func TestReset_FromEveryStep(t *testing.T) {
	h := newHarness()
	h.toDrafted(t)
	id := h.c.Session().ID
	h.c.Reset()
	s := h.c.Session()
	if s.Step != StepRating || s.Rating != 0 || s.Phase != PhaseChoose || s.Draft != "" || s.Status != (Status{}) {
		t.Errorf("reset left state behind: %+v", s)
	}
	if s.ID == id {
		t.Error("reset must start a new session ID")
	}

	must(t, h.c.SubmitRating(2))
	must(t, h.c.SubmitFeedback(context.Background(), FeedbackForm{Name: "A", Email: "a@example.com", Feedback: "x"}))
	<-h.submitter.done
	h.timer.fire()
	if h.c.Session().Step != StepThanks {
		t.Fatal("expected thanks")
	}
	h.c.Reset()
	if s := h.c.Session(); s.Step != StepRating || s.Submitting {
		t.Errorf("reset from thanks left %+v", s)
	}
}
