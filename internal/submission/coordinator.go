package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/atomic"

	"github.com/nao1215/anonyreport/internal/api"
	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
)

// Sender delivers a record to the collection endpoint.
// *api.Client satisfies it.
type Sender interface {
	Submit(ctx context.Context, record model.SubmissionRecord) error
}

// Readiness is the backend liveness flag consulted before sending.
// *readiness.Prober satisfies it.
type Readiness interface {
	State() model.Readiness
	Probe(ctx context.Context) model.Readiness
}

// StateStore persists the outcome of submission attempts.
// *database.StateDB satisfies it.
type StateStore interface {
	MarkCompleted(ctx context.Context) error
	RecordAttempt(ctx context.Context, attempt model.Attempt) error
}

// Outcome describes how an attempt ended.
type Outcome struct {
	// Status is accepted, rejected or network-error.
	Status model.SubmissionStatus

	// Reason is the server message of a rejection, verbatim.
	Reason string

	// Err is the underlying error for a rejection or a network failure.
	Err error

	// Record is the payload that was sent.
	Record model.SubmissionRecord
}

// Accepted reports whether the endpoint accepted the record.
func (o Outcome) Accepted() bool {
	return o.Status == model.StatusAccepted
}

// Coordinator sends finished answer sets.
// It is safe for concurrent use; concurrent attempts are refused.
type Coordinator struct {
	sender    Sender
	readiness Readiness
	store     StateStore
	notify    func(model.Notice)
	now       func() time.Time
	logger    *slog.Logger

	inFlight atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithReadiness sets the prober consulted before sending.
func WithReadiness(r Readiness) Option {
	return func(c *Coordinator) {
		c.readiness = r
	}
}

// WithStateStore sets where the completed flag and attempts are persisted.
func WithStateStore(s StateStore) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithNotifier sets the callback for the "connecting" notice shown while
// the backend state is unknown.
func WithNotifier(fn func(model.Notice)) Option {
	return func(c *Coordinator) {
		c.notify = fn
	}
}

// WithClock sets the time source used for the record timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a Coordinator sending through sender.
func NewCoordinator(sender Sender, opts ...Option) *Coordinator {
	c := &Coordinator{
		sender: sender,
		notify: func(model.Notice) {},
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// InFlight reports whether an attempt is running.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// Submit sends the answers once.
//
// It returns ErrLocationMissing without any request when a location field
// is empty, and ErrSubmitInFlight while another attempt runs. Otherwise the
// error is nil and the Outcome tells whether the record was accepted,
// rejected or lost in transit.
func (c *Coordinator) Submit(ctx context.Context, answers *model.AnswerSet, session model.Session) (Outcome, error) {
	if err := CheckLocation(answers); err != nil {
		return Outcome{}, err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmitInFlight
	}
	defer c.inFlight.Store(false)

	c.awaitReadiness(ctx)

	record := model.NewSubmissionRecord(answers, session, c.now())
	outcome := c.send(ctx, record)

	c.persist(ctx, session, outcome)
	return outcome, nil
}

// awaitReadiness runs the probe when its state is still unknown.
// The result is advisory; sending proceeds either way.
func (c *Coordinator) awaitReadiness(ctx context.Context) {
	if c.readiness == nil || c.readiness.State().Known() {
		return
	}

	c.notify(model.Notice{Level: model.NoticeInfo, MessageID: message.IDConnectingServer})
	state := c.readiness.Probe(ctx)
	c.logger.Debug("readiness before submit", "state", state.String())
}

// send issues exactly one request and classifies the result.
func (c *Coordinator) send(ctx context.Context, record model.SubmissionRecord) Outcome {
	err := c.sender.Submit(ctx, record)
	if err == nil {
		c.logger.Info("submission accepted")
		return Outcome{Status: model.StatusAccepted, Record: record}
	}

	var rejected *api.RejectedError
	if errors.As(err, &rejected) {
		reason := rejected.Body
		if reason == "" {
			reason = fmt.Sprintf("%d %s", rejected.StatusCode, http.StatusText(rejected.StatusCode))
		}
		c.logger.Warn("submission rejected", "status", rejected.StatusCode)
		return Outcome{Status: model.StatusRejected, Reason: reason, Err: err, Record: record}
	}

	c.logger.Warn("submission failed", "error", err)
	return Outcome{Status: model.StatusNetworkError, Err: err, Record: record}
}

// persist records the attempt and, on acceptance, the completed flag.
// Store failures are logged; the server's answer stands.
func (c *Coordinator) persist(ctx context.Context, session model.Session, outcome Outcome) {
	if c.store == nil {
		return
	}

	if outcome.Accepted() {
		if err := c.store.MarkCompleted(ctx); err != nil {
			c.logger.Error("failed to persist completed flag", "error", err)
		}
	}

	attempt := model.Attempt{
		Token:  session.Token,
		Status: outcome.Status,
		Detail: outcome.Reason,
		Record: outcome.Record,
		At:     c.now(),
	}
	if attempt.Detail == "" && outcome.Err != nil {
		attempt.Detail = outcome.Err.Error()
	}
	if err := c.store.RecordAttempt(ctx, attempt); err != nil {
		c.logger.Error("failed to record submission attempt", "error", err)
	}
}

// CheckLocation returns an error wrapping ErrLocationMissing naming the
// first empty location field.
func CheckLocation(answers *model.AnswerSet) error {
	for _, f := range model.LocationFields() {
		if answers.Get(f) == "" {
			return fmt.Errorf("%w: %s", ErrLocationMissing, f)
		}
	}
	return nil
}
