// Package autosave persists dirty form drafts after a period of inactivity.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/form"
)

// DefaultDelay is the debounce window when none is configured.
const DefaultDelay = 30 * time.Second

var (
	// ErrStopped is returned by Flush after Stop.
	ErrStopped = errors.New("autosave scheduler stopped")
	// ErrNotReady is returned by Flush when the ready check rejects the draft.
	ErrNotReady = errors.New("draft is not ready to be saved")
)

// Saver writes a draft record. A record without ID is created, otherwise updated.
type Saver interface {
	SaveDraft(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay sets the debounce window.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the logger used for save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnError registers a callback for failed saves.
func WithOnError(fn func(error)) Option {
	return func(s *Scheduler) { s.onError = fn }
}

// WithReadyCheck skips saves of drafts the server would reject. A skipped save
// is not a failure: the draft stays dirty and the next edit schedules it again.
func WithReadyCheck(fn func(domain.ExpenseForm) bool) Option {
	return func(s *Scheduler) { s.ready = fn }
}

// WithOnSaved registers a callback for successful saves.
func WithOnSaved(fn func(domain.Expense)) Option {
	return func(s *Scheduler) { s.onSaved = fn }
}

// Scheduler debounces dirty transitions of a form.Machine into Saver calls.
type Scheduler struct {
	machine *form.Machine
	saver   Saver
	userID  string
	delay   time.Duration
	logger  *slog.Logger
	onError func(error)
	onSaved func(domain.Expense)
	ready   func(domain.ExpenseForm) bool
	now     func() time.Time

	base       context.Context
	baseCancel context.CancelFunc

	mu          sync.Mutex
	timer       *time.Timer
	stopped     bool
	unsubscribe func()
	inflight    sync.WaitGroup

	// saveMu serialises saves so a create finishes before the next snapshot.
	saveMu sync.Mutex
}

// New builds a Scheduler for drafts owned by userID. Call Start to begin watching.
// Callbacks run on the saving goroutine and must not call Stop.
func New(machine *form.Machine, saver Saver, userID string, opts ...Option) *Scheduler {
	base, baseCancel := context.WithCancel(context.Background())
	s := &Scheduler{
		machine:    machine,
		saver:      saver,
		userID:     userID,
		delay:      DefaultDelay,
		logger:     slog.Default(),
		now:        time.Now,
		base:       base,
		baseCancel: baseCancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the machine. A draft that is already dirty is scheduled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.unsubscribe != nil || s.stopped {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsubscribe := s.machine.Subscribe(s.onEvent)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if s.machine.State().Dirty {
		s.arm()
	}
}

// Stop cancels the pending timer and any in-flight save, then waits for it.
// No save starts after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.baseCancel()
	unsubscribe := s.unsubscribe
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.inflight.Wait()
}

// Flush saves immediately if the draft is dirty, cancelling the pending timer.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	detach := context.AfterFunc(s.base, cancel)
	defer detach()
	return s.save(ctx)
}

// onEvent restarts the debounce on edits and on saves overtaken by an edit.
// Navigation leaves a running timer alone.
func (s *Scheduler) onEvent(ev form.Event) {
	if !ev.Next.Dirty {
		s.disarm()
		return
	}
	_, saved := ev.Action.(form.MarkSaved)
	if saved || ev.Next.Generation != ev.Prev.Generation {
		s.arm()
	}
}

// arm (re)starts the debounce timer.
func (s *Scheduler) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Scheduler) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	if err := s.save(s.base); err != nil && !errors.Is(err, ErrNotReady) {
		s.arm()
	}
}

// save snapshots the draft, writes it and marks the snapshot generation saved.
func (s *Scheduler) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	st := s.machine.State()
	if !st.Dirty {
		return nil
	}
	if s.ready != nil && !s.ready(st.Draft) {
		s.logger.Debug("Auto-save skipped, draft not ready", slog.Uint64("generation", st.Generation))
		return ErrNotReady
	}

	record, err := domain.FormToRecord(st.Draft, s.userID)
	if err != nil {
		s.report(fmt.Errorf("prepare draft: %w", err), st.Generation)
		return err
	}

	saved, err := s.saver.SaveDraft(ctx, record)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.report(err, st.Generation)
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var id string
	if saved != nil {
		id = saved.ID
	}
	if _, err := s.machine.Dispatch(form.MarkSaved{At: s.now(), Generation: st.Generation, Epoch: st.Epoch, ID: id}); err != nil {
		return err
	}
	if s.onSaved != nil && saved != nil {
		s.onSaved(*saved)
	}
	return nil
}

func (s *Scheduler) report(err error, generation uint64) {
	s.logger.Warn("Auto-save failed, draft kept dirty",
		slog.String("error", err.Error()),
		slog.Uint64("generation", generation),
	)
	if s.onError != nil {
		s.onError(err)
	}
}
