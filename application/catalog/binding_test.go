package catalog

import (
	"testing"

	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	rlog "github.com/resq-ai/resq-core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newBindingStore(t *testing.T) *state.Store {
	t.Helper()
	store := state.NewStore(state.WithLogger(rlog.Discard()))
	t.Cleanup(store.Dispose)
	require.NoError(t, store.Reset("A"))
	require.NoError(t, store.ReplaceSupplies([]entities.SupplyItem{
		{ID: "1", Name: "Bandages", Count: 10, Category: entities.CategoryMedical},
	}))
	return store
}

func TestBinding_IgnoresOlderVersions(t *testing.T) {
	store := newBindingStore(t)
	b := &binding{scope: store.Scope("A")}
	require.NoError(t, b.observe())
	t.Cleanup(b.Unmount)

	old, err := b.current()
	require.NoError(t, err)

	_, err = store.AdjustSupplyCount("1", 1)
	require.NoError(t, err)
	latest, err := b.current()
	require.NoError(t, err)
	assert.Greater(t, latest.Version, old.Version)
	assert.Equal(t, 2, b.Renders())

	// A late delivery of an older snapshot must not roll the view back.
	b.onChange(state.Change{Kind: state.ChangeSupplies, Snapshot: old})
	got, err := b.current()
	require.NoError(t, err)
	assert.Equal(t, latest.Version, got.Version)
	assert.Equal(t, 11, got.Supplies[0].Count)
	assert.Equal(t, 2, b.Renders())
}

func TestBinding_ObserveDuringMutationsConverges(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := newBindingStore(t)
		b := &binding{scope: store.Scope("A")}

		var g errgroup.Group
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				if _, err := store.AdjustSupplyCount("1", 1); err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(b.observe)
		require.NoError(t, g.Wait())

		got, err := b.current()
		require.NoError(t, err)
		assert.Equal(t, store.Snapshot().Version, got.Version, "iteration %d", i)
		assert.Equal(t, 30, got.Supplies[0].Count, "iteration %d", i)
		b.Unmount()
	}
}

func TestBinding_StaleAfterThreadChange(t *testing.T) {
	store := newBindingStore(t)
	b := &binding{scope: store.Scope("A")}
	require.NoError(t, b.observe())
	t.Cleanup(b.Unmount)

	require.NoError(t, store.Reset("B"))
	_, err := b.current()
	assert.ErrorIs(t, err, errors.ErrStaleThread)
}
