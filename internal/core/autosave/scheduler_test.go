package autosave_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/autosave"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delay = 20 * time.Millisecond

type fakeSaver struct {
	mu      sync.Mutex
	saved   []domain.Expense
	failN   int32
	block   chan struct{}
	started chan struct{}
	calls   atomic.Int32
}

func (f *fakeSaver) SaveDraft(ctx context.Context, e domain.Expense) (*domain.Expense, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if atomic.AddInt32(&f.failN, -1) >= 0 {
		return nil, errors.New("backend down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = "exp-1"
	}
	f.saved = append(f.saved, e)
	return &e, nil
}

func (f *fakeSaver) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeSaver) last() domain.Expense {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

func edit(t *testing.T, m *form.Machine, fields map[string]any) {
	t.Helper()
	act, err := form.PatchOf(fields)
	require.NoError(t, err)
	_, err = m.Dispatch(act)
	require.NoError(t, err)
}

func TestScheduler_DebouncesEdits(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{}
	s := autosave.New(m, saver, "user-1", autosave.WithDelay(delay))
	s.Start()
	defer s.Stop()

	edit(t, m, map[string]any{"description": "first version"})
	edit(t, m, map[string]any{"description": "second version"})
	edit(t, m, map[string]any{"description": "final version of text"})

	require.Eventually(t, func() bool { return saver.savedCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "final version of text", saver.last().Description)
	assert.Equal(t, "user-1", saver.last().UserID)

	require.Eventually(t, func() bool { return !m.State().Dirty }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "exp-1", m.State().Draft.ID, "server id is adopted")
	assert.NotNil(t, m.State().LastSaved)

	time.Sleep(3 * delay)
	assert.Equal(t, int32(1), saver.calls.Load(), "clean state is not saved again")
}

func TestScheduler_FailureKeepsDirtyAndRetries(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{failN: 1}
	var reported atomic.Int32
	s := autosave.New(m, saver, "user-1",
		autosave.WithDelay(delay),
		autosave.WithOnError(func(error) { reported.Add(1) }),
	)
	s.Start()
	defer s.Stop()

	edit(t, m, map[string]any{"description": "needs a retry"})

	require.Eventually(t, func() bool { return reported.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.State().Dirty)

	require.Eventually(t, func() bool { return saver.savedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !m.State().Dirty }, time.Second, 5*time.Millisecond)
}

func TestScheduler_EditDuringSaveStaysDirty(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{block: make(chan struct{}), started: make(chan struct{}, 4)}
	s := autosave.New(m, saver, "user-1", autosave.WithDelay(delay))
	s.Start()
	defer s.Stop()

	edit(t, m, map[string]any{"description": "snapshot one"})
	<-saver.started

	edit(t, m, map[string]any{"description": "edited while saving"})
	saver.block <- struct{}{}

	require.Eventually(t, func() bool { return saver.savedCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.State().Dirty, "the newer edit is still unsaved")

	<-saver.started
	saver.block <- struct{}{}
	require.Eventually(t, func() bool { return saver.savedCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "edited while saving", saver.last().Description)
	assert.Equal(t, "exp-1", saver.last().ID, "second save updates the created draft")
	require.Eventually(t, func() bool { return !m.State().Dirty }, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopCancelsPendingAndInflight(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{}
	s := autosave.New(m, saver, "user-1", autosave.WithDelay(delay))
	s.Start()

	edit(t, m, map[string]any{"description": "never saved at all"})
	s.Stop()

	time.Sleep(3 * delay)
	assert.Equal(t, int32(0), saver.calls.Load())

	blocking := &fakeSaver{block: make(chan struct{}), started: make(chan struct{}, 1)}
	m2 := form.NewMachine(form.NewState())
	s2 := autosave.New(m2, blocking, "user-1", autosave.WithDelay(delay))
	s2.Start()
	edit(t, m2, map[string]any{"description": "in flight when stopped"})
	<-blocking.started

	s2.Stop()
	assert.Equal(t, 0, blocking.savedCount())
	assert.True(t, m2.State().Dirty)
	assert.ErrorIs(t, s2.Flush(context.Background()), autosave.ErrStopped)
}

func TestScheduler_Flush(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{}
	s := autosave.New(m, saver, "user-1", autosave.WithDelay(time.Hour))
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Flush(context.Background()), "clean flush is a no-op")
	assert.Equal(t, int32(0), saver.calls.Load())

	edit(t, m, map[string]any{"type": string(domain.TypeMaintenance), "vendorName": "Acme"})
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, saver.savedCount())
	assert.Equal(t, domain.TypeMaintenance, saver.last().Type)
	assert.False(t, m.State().Dirty)
}

func TestScheduler_ReadyCheckSkipsWithoutFailure(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{}
	var reported atomic.Int32
	s := autosave.New(m, saver, "user-1",
		autosave.WithDelay(delay),
		autosave.WithReadyCheck(func(f domain.ExpenseForm) bool { return len(f.BusinessPurpose) >= 5 }),
		autosave.WithOnError(func(error) { reported.Add(1) }),
	)
	s.Start()
	defer s.Stop()

	edit(t, m, map[string]any{"description": "partial draft"})
	time.Sleep(4 * delay)
	assert.Zero(t, saver.calls.Load(), "a draft the server would reject is not sent")
	assert.Zero(t, reported.Load(), "a skipped save is not reported as a failure")
	assert.True(t, m.State().Dirty)
	assert.ErrorIs(t, s.Flush(context.Background()), autosave.ErrNotReady)

	edit(t, m, map[string]any{"businessPurpose": "long enough"})
	require.Eventually(t, func() bool { return saver.savedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !m.State().Dirty }, time.Second, 5*time.Millisecond)
}

func TestScheduler_NavigationDoesNotRestartDebounce(t *testing.T) {
	m := form.NewMachine(form.NewState())
	saver := &fakeSaver{}
	s := autosave.New(m, saver, "user-1", autosave.WithDelay(delay))
	s.Start()
	defer s.Stop()

	edit(t, m, map[string]any{"description": "edited before moving on"})
	for step := 1; step <= 12; step++ {
		time.Sleep(delay / 4)
		_, err := m.Dispatch(form.SetStep{Step: step % 3})
		require.NoError(t, err)
	}
	assert.Eventually(t, func() bool { return saver.calls.Load() == 1 }, delay/2, time.Millisecond,
		"moving between steps must not postpone the save of the earlier edit")
}
