package readiness

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 15 * time.Second

// DefaultClearDelay is how long the "preparing" notice stays after a successful probe.
const DefaultClearDelay = 2 * time.Second

// Checker performs one liveness request.
// *api.Client satisfies it.
type Checker interface {
	Health(ctx context.Context) error
}

// Prober runs the liveness check at most once and keeps the result.
type Prober struct {
	checker    Checker
	timeout    time.Duration
	clearDelay time.Duration
	notify     func(model.Notice)
	logger     *slog.Logger

	// started is set by the first Start call.
	started atomic.Bool

	mu    sync.Mutex
	state model.Readiness
	// done is non-nil once a probe began and is closed when it finishes.
	done chan struct{}
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the bound of a single probe.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithClearDelay sets how long the informational notice stays after success.
func WithClearDelay(d time.Duration) Option {
	return func(p *Prober) {
		p.clearDelay = d
	}
}

// WithNotifier sets the callback that shows and clears the probing notice.
// It may be called from another goroutine.
func WithNotifier(fn func(model.Notice)) Option {
	return func(p *Prober) {
		p.notify = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// New creates a Prober that uses checker.
func New(checker Checker, opts ...Option) *Prober {
	p := &Prober{
		checker:    checker,
		timeout:    DefaultTimeout,
		clearDelay: DefaultClearDelay,
		notify:     func(model.Notice) {},
		logger:     slog.Default(),
		state:      model.ReadinessUnknown,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins the probe in the background and returns immediately.
// Only the first call has an effect.
func (p *Prober) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go p.Probe(context.WithoutCancel(ctx))
}

// Probe returns the readiness state, running the check when none has run yet.
// A call made while a probe is in flight waits for it (or for ctx).
// Probe never returns an error: timeouts and failures yield ReadinessUnreachable.
func (p *Prober) Probe(ctx context.Context) model.Readiness {
	p.mu.Lock()
	if p.state.Known() {
		state := p.state
		p.mu.Unlock()
		return state
	}
	if p.done != nil {
		done := p.done
		p.mu.Unlock()
		return p.wait(ctx, done)
	}
	done := make(chan struct{})
	p.done = done
	p.started.Store(true)
	p.mu.Unlock()

	state := p.run(ctx)

	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	close(done)

	return state
}

// run performs the bounded liveness request and drives the notice.
func (p *Prober) run(ctx context.Context) model.Readiness {
	p.notify(model.Notice{Level: model.NoticeInfo, MessageID: message.IDPreparingSystem})

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.checker.Health(ctx); err != nil {
		p.logger.Warn("health check failed, continuing anyway",
			"error", err,
			"duration", time.Since(start).Round(time.Millisecond),
		)
		p.notify(model.ClearNotice())
		return model.ReadinessUnreachable
	}

	p.logger.Info("backend ready", "duration", time.Since(start).Round(time.Millisecond))
	time.AfterFunc(p.clearDelay, func() {
		p.notify(model.ClearNotice())
	})
	return model.ReadinessReady
}

// Wait blocks until the in-flight probe finishes or ctx is done and returns
// the state at that point. It does not start a probe.
func (p *Prober) Wait(ctx context.Context) model.Readiness {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return p.State()
	}
	return p.wait(ctx, done)
}

// wait blocks until the in-flight probe finishes or ctx is done.
func (p *Prober) wait(ctx context.Context, done <-chan struct{}) model.Readiness {
	select {
	case <-done:
		return p.State()
	case <-ctx.Done():
		return p.State()
	}
}

// State returns the current state without probing.
func (p *Prober) State() model.Readiness {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
