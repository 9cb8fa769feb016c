package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/submission"
	"github.com/nao1215/anonyreport/internal/survey"
)

// Messages produced by Presenter.
type (
	stepMsg        struct{ view survey.StepView }
	errorMsg       struct{ err error }
	clearErrorMsg  struct{}
	loadRegionsMsg struct{}
	submittingMsg  struct{ submitting bool }
	confirmedMsg   struct{ outcome submission.Outcome }
	noticeMsg      struct{ notice model.Notice }
)

// Presenter implements survey.Presenter by forwarding every call to a
// running tea.Program. Calls made before Attach are dropped.
type Presenter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewPresenter creates a detached Presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Attach sets the message sink, normally (*tea.Program).Send.
func (p *Presenter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Presenter) emit(msg tea.Msg) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()

	if send != nil {
		send(msg)
	}
}

// ShowStep implements survey.Presenter.
func (p *Presenter) ShowStep(view survey.StepView) { p.emit(stepMsg{view: view}) }

// ShowError implements survey.Presenter.
func (p *Presenter) ShowError(err error) { p.emit(errorMsg{err: err}) }

// ClearError implements survey.Presenter.
func (p *Presenter) ClearError() { p.emit(clearErrorMsg{}) }

// LoadRegions implements survey.Presenter. The model starts the lookup.
func (p *Presenter) LoadRegions(context.Context) { p.emit(loadRegionsMsg{}) }

// SetSubmitting implements survey.Presenter.
func (p *Presenter) SetSubmitting(submitting bool) { p.emit(submittingMsg{submitting: submitting}) }

// ShowConfirmation implements survey.Presenter.
func (p *Presenter) ShowConfirmation(outcome submission.Outcome) {
	p.emit(confirmedMsg{outcome: outcome})
}

// Notify shows or clears a readiness notice. It matches the notifier
// callbacks of readiness.Prober and submission.Coordinator.
func (p *Presenter) Notify(n model.Notice) { p.emit(noticeMsg{notice: n}) }

var _ survey.Presenter = (*Presenter)(nil)
