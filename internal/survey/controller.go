package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.uber.org/atomic"

	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/submission"
)

// progressSteps is the number of screens the progress estimate is based on.
// Paths differ in length, so the estimate saturates at 1.
const progressSteps = 10

// StepView is what the presentation layer needs to render the active step.
type StepView struct {
	Step     model.StepID
	Question model.Question
	Position int

	// CanRetreat is false on the entry step.
	CanRetreat bool

	// CanSubmit is true only on the location step, which replaces the
	// "next" affordance with "submit".
	CanSubmit bool

	// Progress is the completed share of the questionnaire, in [0, 1].
	Progress float64

	// Answers is a copy of the answers so far, used to highlight selections.
	Answers *model.AnswerSet
}

// Presenter renders the controller's decisions.
// Methods may be called from any goroutine that calls the Controller.
type Presenter interface {
	// ShowStep renders a newly active step.
	ShowStep(view StepView)

	// ShowError shows a transient error.
	ShowError(err error)

	// ClearError dismisses the error currently shown, if any.
	ClearError()

	// LoadRegions starts loading the top-level region list for the location step.
	LoadRegions(ctx context.Context)

	// SetSubmitting disables or re-enables the submit affordance.
	SetSubmitting(submitting bool)

	// ShowConfirmation switches to the confirmation view after an accepted submission.
	ShowConfirmation(outcome submission.Outcome)
}

// Submitter delivers the finished answers.
// *submission.Coordinator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, answers *model.AnswerSet, session model.Session) (submission.Outcome, error)
}

// Trigger starts the background readiness probe.
// *readiness.Prober satisfies it.
type Trigger interface {
	Start(ctx context.Context)
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Step       model.StepID
	Position   int
	Path       []model.StepID
	Answers    *model.AnswerSet
	Submitting bool
	Completed  bool
}

// Controller applies the respondent's intents to the questionnaire.
//
// It owns the session, the answers and the navigation history. Advance and
// Retreat share one in-flight slot and Submit has its own, so a repeated
// intent that arrives before the previous one finished gets ErrBusy instead
// of running twice.
type Controller struct {
	session   model.Session
	submitter Submitter
	presenter Presenter
	trigger   Trigger
	validator *Validator
	logger    *slog.Logger

	mu      sync.Mutex
	answers *model.AnswerSet
	history *History

	navigating atomic.Bool
	submitting atomic.Bool
	completed  atomic.Bool
	touched    atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithTrigger sets the readiness probe started on the first interaction.
func WithTrigger(t Trigger) Option {
	return func(c *Controller) {
		c.trigger = t
	}
}

// WithValidator sets the step validator.
func WithValidator(v *Validator) Option {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller positioned on the entry step.
func NewController(session model.Session, submitter Submitter, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		session:   session,
		submitter: submitter,
		presenter: presenter,
		validator: NewValidator(),
		logger:    slog.Default(),
		answers:   model.NewAnswerSet(),
		history:   NewHistory(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Session returns the session the controller submits with.
func (c *Controller) Session() model.Session {
	return c.session
}

// Show renders the active step.
func (c *Controller) Show() {
	c.mu.Lock()
	view := c.viewLocked()
	c.mu.Unlock()

	c.presenter.ShowStep(view)
}

// View returns the active step's view.
func (c *Controller) View() StepView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Answer records a selection on the visible step.
//
// field must be an input group of the active step (or the honeypot) and,
// for single-choice groups, every value must be one of its options. Passing
// no values clears the field. Choosing a department or province clears the
// levels below it. The first answer starts the readiness probe.
func (c *Controller) Answer(ctx context.Context, field model.Field, values ...string) error {
	if c.completed.Load() {
		return ErrSessionComplete
	}

	c.mu.Lock()
	if err := checkAnswer(c.history.Current(), field, values); err != nil {
		c.mu.Unlock()
		return err
	}
	c.answers.Set(field, values...)
	switch field {
	case model.FieldDepartment:
		c.answers.Clear(model.FieldProvince)
		c.answers.Clear(model.FieldDistrict)
	case model.FieldProvince:
		c.answers.Clear(model.FieldDistrict)
	}
	c.mu.Unlock()

	if c.trigger != nil && c.touched.CompareAndSwap(false, true) {
		c.trigger.Start(ctx)
	}
	c.presenter.ClearError()
	return nil
}

// checkAnswer verifies that field belongs to step and values are valid options.
func checkAnswer(step model.StepID, field model.Field, values []string) error {
	if field == model.FieldHoneypot {
		return nil
	}

	q, ok := model.QuestionFor(step)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, string(step))
	}
	idx := slices.IndexFunc(q.Groups, func(g model.InputGroup) bool { return g.Field == field })
	if idx < 0 {
		return fmt.Errorf("%w: %s is not asked on step %s", ErrInvalidAnswer, field, step)
	}

	group := q.Groups[idx]
	if group.Kind != model.InputRadio {
		return nil
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		if !slices.ContainsFunc(group.Options, func(o model.Option) bool { return o.Value == v }) {
			return fmt.Errorf("%w: %q is not an option of %s", ErrInvalidAnswer, v, field)
		}
	}
	return nil
}

// Advance leaves the active step when it is complete.
//
// An incomplete step is reported to the presenter and returned as an error
// wrapping ErrIncompleteStep; the history is not touched. When the step
// graph has no next step (the location step, or an undecided branch) Advance
// returns false and a nil error. Reaching the location step asks the
// presenter to load the region list.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	if c.completed.Load() {
		return false, ErrSessionComplete
	}
	if !c.navigating.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer c.navigating.Store(false)

	c.mu.Lock()
	current := c.history.Current()
	if err := c.validator.Check(current, AnswerSurface{Answers: c.answers}); err != nil {
		c.mu.Unlock()
		c.presenter.ShowError(err)
		return false, err
	}

	next, ok, err := NextStep(current, c.answers)
	if err != nil {
		pos := c.history.Position()
		c.mu.Unlock()
		c.logger.Warn("navigation ignored", "position", pos)
		return false, err
	}
	if !ok {
		c.mu.Unlock()
		c.presenter.ClearError()
		return false, nil
	}

	c.history.Advance(next)
	view := c.viewLocked()
	c.mu.Unlock()

	c.logger.Debug("advanced", "position", view.Position)
	c.presenter.ClearError()
	c.presenter.ShowStep(view)
	if next == model.LocationStep {
		c.presenter.LoadRegions(ctx)
	}
	return true, nil
}

// Retreat moves back to the previously visited step without recomputing the
// path. It returns false on the entry step.
func (c *Controller) Retreat() (bool, error) {
	if c.completed.Load() {
		return false, ErrSessionComplete
	}
	if !c.navigating.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer c.navigating.Store(false)

	c.mu.Lock()
	if !c.history.Retreat() {
		c.mu.Unlock()
		return false, nil
	}
	view := c.viewLocked()
	c.mu.Unlock()

	c.presenter.ClearError()
	c.presenter.ShowStep(view)
	return true, nil
}

// Submit sends the answers through the submitter.
//
// It is only available on the location step. A local validation failure is
// shown and returned as an error; a rejection or network failure is shown
// and returned in the Outcome with a nil error, leaving submit enabled for
// another explicit attempt. After an accepted submission every further
// intent returns ErrSessionComplete.
func (c *Controller) Submit(ctx context.Context) (submission.Outcome, error) {
	if c.completed.Load() {
		return submission.Outcome{}, ErrSessionComplete
	}

	c.mu.Lock()
	if c.history.Current() != model.LocationStep {
		c.mu.Unlock()
		return submission.Outcome{}, ErrNotAtLocation
	}
	answers := c.answers.Clone()
	c.mu.Unlock()

	if !c.submitting.CompareAndSwap(false, true) {
		return submission.Outcome{}, ErrBusy
	}
	defer c.submitting.Store(false)

	c.presenter.ClearError()
	c.presenter.SetSubmitting(true)
	defer c.presenter.SetSubmitting(false)

	outcome, err := c.submitter.Submit(ctx, answers, c.session)
	if err != nil {
		if !errors.Is(err, submission.ErrSubmitInFlight) {
			c.presenter.ShowError(err)
		}
		return outcome, err
	}

	if outcome.Accepted() {
		c.completed.Store(true)
		c.presenter.ShowConfirmation(outcome)
		return outcome, nil
	}

	c.presenter.ShowError(outcome.Err)
	return outcome, nil
}

// State returns a snapshot of the controller.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Step:       c.history.Current(),
		Position:   c.history.Position(),
		Path:       c.history.Path(),
		Answers:    c.answers.Clone(),
		Submitting: c.submitting.Load(),
		Completed:  c.completed.Load(),
	}
}

// viewLocked builds the active step's view. c.mu must be held.
func (c *Controller) viewLocked() StepView {
	step := c.history.Current()
	pos := c.history.Position()
	q, _ := model.QuestionFor(step)

	return StepView{
		Step:       step,
		Question:   q,
		Position:   pos,
		CanRetreat: pos > 0,
		CanSubmit:  step == model.LocationStep,
		Progress:   min(float64(pos+1)/progressSteps, 1),
		Answers:    c.answers.Clone(),
	}
}
