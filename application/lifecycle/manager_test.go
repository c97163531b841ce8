package lifecycle

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"

	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	rlog "github.com/resq-ai/resq-core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResetter struct {
	err   error
	calls []string
}

func (r *recordingResetter) Reset(threadID string) error {
	r.calls = append(r.calls, threadID)
	return r.err
}

func TestManager_Transitions(t *testing.T) {
	ctx := context.Background()
	r := &recordingResetter{}
	m := NewManager(r, WithLogger(rlog.Discard()))

	assert.Equal(t, PhaseUninitialized, m.Phase())
	id, err := m.Active()
	require.NoError(t, err)
	assert.Empty(t, id)

	tests := []struct {
		name      string
		threadID  string
		wantCalls []string
		wantID    string
	}{
		{name: "null thread is a no-op", threadID: "", wantCalls: nil, wantID: ""},
		{name: "first thread resets", threadID: "A", wantCalls: []string{"A"}, wantID: "A"},
		{name: "same thread is a no-op", threadID: "A", wantCalls: []string{"A"}, wantID: "A"},
		{name: "new thread resets", threadID: "B", wantCalls: []string{"A", "B"}, wantID: "B"},
		{name: "null after active keeps thread", threadID: "", wantCalls: []string{"A", "B"}, wantID: "B"},
		{name: "returning to old thread resets", threadID: "A", wantCalls: []string{"A", "B", "A"}, wantID: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.OnThreadChanged(ctx, tt.threadID))
			assert.Equal(t, tt.wantCalls, r.calls)
			id, err := m.Active()
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
	assert.Equal(t, PhaseActive, m.Phase())
}

func TestManager_ResetFailure(t *testing.T) {
	ctx := context.Background()
	r := &recordingResetter{}
	m := NewManager(r, WithLogger(rlog.Discard()))
	require.NoError(t, m.OnThreadChanged(ctx, "A"))

	r.err = stdErrors.New("disk on fire")
	err := m.OnThreadChanged(ctx, "B")

	var resetErr *errors.ThreadResetError
	require.True(t, stdErrors.As(err, &resetErr))
	assert.Equal(t, "B", resetErr.ThreadID)
	assert.Equal(t, PhaseUninitialized, m.Phase())

	_, activeErr := m.Active()
	assert.ErrorAs(t, activeErr, &resetErr)

	// A later successful transition recovers.
	r.err = nil
	require.NoError(t, m.OnThreadChanged(ctx, "B"))
	id, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, "B", id)
}

func TestManager_TransitionHooks(t *testing.T) {
	ctx := context.Background()
	var got []Transition
	m := NewManager(&recordingResetter{},
		WithLogger(rlog.Discard()),
		WithTransitionHook(func(_ context.Context, tr Transition) { got = append(got, tr) }),
	)

	require.NoError(t, m.OnThreadChanged(ctx, "A"))
	require.NoError(t, m.OnThreadChanged(ctx, "A"))
	require.NoError(t, m.OnThreadChanged(ctx, "B"))

	assert.Equal(t, []Transition{{From: "", To: "A"}, {From: "A", To: "B"}}, got)
}

func TestManager_ResetCompletesBeforeNewThreadIsVisible(t *testing.T) {
	ctx := context.Background()
	store := state.NewStore(state.WithLogger(rlog.Discard()))
	defer store.Dispose()
	m := NewManager(store, WithLogger(rlog.Discard()))

	require.NoError(t, m.OnThreadChanged(ctx, "A"))
	require.NoError(t, store.ReplaceSupplies([]entities.SupplyItem{
		{ID: "1", Name: "Bandages", Category: entities.CategoryMedical, Count: 45},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := m.Active()
			assert.NoError(t, err)
			if id == "B" {
				snap, err := store.Scope(id).Snapshot()
				if err == nil {
					assert.Empty(t, snap.Supplies, "thread B must never observe thread A supplies")
				}
			}
		}()
	}
	require.NoError(t, m.OnThreadChanged(ctx, "B"))
	wg.Wait()

	assert.Empty(t, store.Supplies())
	assert.Equal(t, "B", store.ThreadID())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "uninitialized", PhaseUninitialized.String())
	assert.Equal(t, "active", PhaseActive.String())
}
