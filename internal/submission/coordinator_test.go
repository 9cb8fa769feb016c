package submission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/anonyreport/internal/api"
	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/readiness"
)

// fakeSender records submitted records.
type fakeSender struct {
	mu      sync.Mutex
	records []model.SubmissionRecord
	err     error
	block   chan struct{}
}

// Submit implements Sender.
func (f *fakeSender) Submit(_ context.Context, record model.SubmissionRecord) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeStore records persisted state.
type fakeStore struct {
	mu        sync.Mutex
	completed bool
	attempts  []model.Attempt
}

// MarkCompleted implements StateStore.
func (s *fakeStore) MarkCompleted(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
	return nil
}

// RecordAttempt implements StateStore.
func (s *fakeStore) RecordAttempt(_ context.Context, a model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, a)
	return nil
}

// fakeReadiness is a Readiness with a fixed state.
type fakeReadiness struct {
	state  model.Readiness
	probes int
}

func (r *fakeReadiness) State() model.Readiness { return r.state }

func (r *fakeReadiness) Probe(context.Context) model.Readiness {
	r.probes++
	r.state = model.ReadinessReady
	return r.state
}

// completeAnswers returns a finished non-victim answer set.
func completeAnswers() *model.AnswerSet {
	a := model.NewAnswerSet()
	a.Set(model.FieldVictim, model.VictimNone)
	a.Set(model.FieldWitness, model.No)
	a.Set(model.FieldDepartment, "LIMA")
	a.Set(model.FieldProvince, "LIMA")
	a.Set(model.FieldDistrict, "MIRAFLORES")
	return a
}

func testSession() model.Session {
	return model.NewSession("7f1c2a9e-3c1d-4f3e-9a55-0c2f8f0b1d11", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

// TestSubmitLocation tests the local location precondition.
func TestSubmitLocation(t *testing.T) {
	t.Parallel()

	for _, f := range model.LocationFields() {
		t.Run(fmt.Sprintf("missing %s", f), func(t *testing.T) {
			t.Parallel()

			sender := &fakeSender{}
			r := &fakeReadiness{}
			c := NewCoordinator(sender, WithReadiness(r))

			answers := completeAnswers()
			answers.Clear(f)

			_, err := c.Submit(context.Background(), answers, testSession())
			if !errors.Is(err, ErrLocationMissing) {
				t.Fatalf("expected ErrLocationMissing, got %v", err)
			}
			if !strings.Contains(err.Error(), f.String()) {
				t.Errorf("expected error to name %s, got %v", f, err)
			}
			if sender.count() != 0 {
				t.Error("no request may be issued")
			}
			if r.probes != 0 {
				t.Error("no probe may be issued")
			}
		})
	}
}

// TestSubmitOutcomes tests how endpoint responses are classified.
func TestSubmitOutcomes(t *testing.T) {
	t.Parallel()

	t.Run("accepted persists completion", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		store := &fakeStore{}
		now := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
		c := NewCoordinator(sender, WithStateStore(store), WithClock(func() time.Time { return now }))

		outcome, err := c.Submit(context.Background(), completeAnswers(), testSession())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.Accepted() {
			t.Fatalf("expected accepted, got %s", outcome.Status)
		}
		if outcome.Record.Elapsed != 5*60*1000 {
			t.Errorf("expected elapsed 300000, got %d", outcome.Record.Elapsed)
		}
		if !store.completed {
			t.Error("expected completed flag")
		}
		if len(store.attempts) != 1 || store.attempts[0].Status != model.StatusAccepted {
			t.Errorf("expected one accepted attempt, got %+v", store.attempts)
		}
	})

	t.Run("rejection keeps the server text", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		sender := &fakeSender{err: &api.RejectedError{StatusCode: http.StatusTooManyRequests, Body: "rate limited"}}
		c := NewCoordinator(sender, WithStateStore(store))

		outcome, err := c.Submit(context.Background(), completeAnswers(), testSession())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Status != model.StatusRejected {
			t.Fatalf("expected rejected, got %s", outcome.Status)
		}
		if outcome.Reason != "rate limited" {
			t.Errorf("expected verbatim reason, got %q", outcome.Reason)
		}
		if store.completed {
			t.Error("rejection must not mark completion")
		}
		if c.InFlight() {
			t.Error("submit must be re-enabled")
		}
	})

	t.Run("empty rejection body uses the status", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{err: &api.RejectedError{StatusCode: http.StatusBadRequest}}
		c := NewCoordinator(sender)

		outcome, _ := c.Submit(context.Background(), completeAnswers(), testSession())
		if outcome.Reason != "400 Bad Request" {
			t.Errorf("unexpected reason %q", outcome.Reason)
		}
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		sender := &fakeSender{err: fmt.Errorf("%w: connection refused", api.ErrUnreachable)}
		c := NewCoordinator(sender, WithStateStore(store))

		outcome, err := c.Submit(context.Background(), completeAnswers(), testSession())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Status != model.StatusNetworkError {
			t.Fatalf("expected network error, got %s", outcome.Status)
		}
		if !errors.Is(outcome.Err, api.ErrUnreachable) {
			t.Errorf("expected ErrUnreachable, got %v", outcome.Err)
		}
		if len(store.attempts) != 1 || store.attempts[0].Detail == "" {
			t.Errorf("expected attempt with detail, got %+v", store.attempts)
		}
	})

	t.Run("failures are never retried", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{err: fmt.Errorf("%w: timeout", api.ErrUnreachable)}
		c := NewCoordinator(sender)

		if _, err := c.Submit(context.Background(), completeAnswers(), testSession()); err != nil {
			t.Fatal(err)
		}
		if sender.count() != 1 {
			t.Errorf("expected exactly one request, got %d", sender.count())
		}
	})
}

// TestSubmitGuard tests the single-slot in-flight guard.
func TestSubmitGuard(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{block: make(chan struct{})}
	c := NewCoordinator(sender)

	first := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), completeAnswers(), testSession())
		first <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !c.InFlight() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Submit(context.Background(), completeAnswers(), testSession()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}

	close(sender.block)
	if err := <-first; err != nil {
		t.Errorf("first submit failed: %v", err)
	}
	if sender.count() != 1 {
		t.Errorf("expected one request, got %d", sender.count())
	}
}

// TestSubmitReadiness tests the advisory readiness probe.
func TestSubmitReadiness(t *testing.T) {
	t.Parallel()

	t.Run("unknown state probes and notifies", func(t *testing.T) {
		t.Parallel()

		var notices []model.Notice
		r := &fakeReadiness{}
		c := NewCoordinator(&fakeSender{}, WithReadiness(r), WithNotifier(func(n model.Notice) {
			notices = append(notices, n)
		}))

		if _, err := c.Submit(context.Background(), completeAnswers(), testSession()); err != nil {
			t.Fatal(err)
		}
		if r.probes != 1 {
			t.Errorf("expected one probe, got %d", r.probes)
		}
		if len(notices) != 1 || notices[0].MessageID != message.IDConnectingServer {
			t.Errorf("expected connecting notice, got %+v", notices)
		}
	})

	t.Run("known state skips the probe", func(t *testing.T) {
		t.Parallel()

		r := &fakeReadiness{state: model.ReadinessUnreachable}
		sender := &fakeSender{}
		c := NewCoordinator(sender, WithReadiness(r))

		if _, err := c.Submit(context.Background(), completeAnswers(), testSession()); err != nil {
			t.Fatal(err)
		}
		if r.probes != 0 {
			t.Error("expected no probe")
		}
		if sender.count() != 1 {
			t.Error("unreachable backend must still be tried")
		}
	})

	t.Run("probe timeout still submits", func(t *testing.T) {
		t.Parallel()

		submitted := make(chan struct{}, 1)
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
			submitted <- struct{}{}
			w.WriteHeader(http.StatusCreated)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := api.NewClient(server.URL)
		if err != nil {
			t.Fatal(err)
		}
		prober := readiness.New(client, readiness.WithTimeout(50*time.Millisecond))
		c := NewCoordinator(client, WithReadiness(prober))

		outcome, err := c.Submit(context.Background(), completeAnswers(), testSession())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.Accepted() {
			t.Errorf("expected accepted, got %s (%v)", outcome.Status, outcome.Err)
		}
		if prober.State() != model.ReadinessUnreachable {
			t.Errorf("expected unreachable, got %s", prober.State())
		}
		select {
		case <-submitted:
		default:
			t.Error("expected the submit request")
		}
	})
}
