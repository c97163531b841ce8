package state

import (
	"testing"

	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_ActiveThread(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Reset("A"))

	scope := s.Scope("A")
	assert.Equal(t, "A", scope.ThreadID())
	assert.True(t, scope.Active())

	require.NoError(t, scope.ReplaceSupplies([]entities.SupplyItem{bandages(45)}))
	applied, err := scope.AdjustSupplyCount("1", -5)
	require.NoError(t, err)
	assert.True(t, applied)

	kept, err := scope.ReplaceMarkers([]entities.MapMarker{{Title: "Zone A", Lat: 12.97, Lng: 77.59}})
	require.NoError(t, err)
	assert.Equal(t, 1, kept)

	supplies, err := scope.Supplies()
	require.NoError(t, err)
	assert.Equal(t, 40, supplies[0].Count)

	markers, err := scope.Markers()
	require.NoError(t, err)
	assert.Len(t, markers, 1)
}

func TestScope_StaleAfterReset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Reset("A"))
	scope := s.Scope("A")
	require.NoError(t, scope.ReplaceSupplies([]entities.SupplyItem{bandages(45)}))

	require.NoError(t, s.Reset("B"))

	assert.False(t, scope.Active())
	_, err := scope.Supplies()
	assert.ErrorIs(t, err, errors.ErrStaleThread)
	assert.ErrorIs(t, scope.ReplaceSupplies([]entities.SupplyItem{bandages(1)}), errors.ErrStaleThread)
	_, err = scope.AdjustSupplyCount("1", 1)
	assert.ErrorIs(t, err, errors.ErrStaleThread)
	_, err = scope.ReplaceMarkers(nil)
	assert.ErrorIs(t, err, errors.ErrStaleThread)

	assert.Empty(t, s.Supplies(), "stale writes never reach thread B")
}

func TestScope_SubscribeFiltersOtherThreads(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Reset("A"))
	scope := s.Scope("A")

	var kinds []ChangeKind
	unsubscribe := scope.Subscribe(func(ch Change) { kinds = append(kinds, ch.Kind) })
	defer unsubscribe()

	require.NoError(t, scope.ReplaceSupplies([]entities.SupplyItem{bandages(1)}))
	require.NoError(t, s.Reset("B"))
	require.NoError(t, s.ReplaceSupplies([]entities.SupplyItem{bandages(2)}))

	assert.Equal(t, []ChangeKind{ChangeSupplies, ChangeReset}, kinds)
}
