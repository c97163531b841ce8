package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/resq-ai/resq-core/application/config"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/resq-ai/resq-core/domain/ports"
	"github.com/resq-ai/resq-core/host/registry"
)

// IncidentData is the per-thread incident summary returned by incidentData.
type IncidentData struct {
	Logistics   []LogisticsEntry  `json:"logistics"`
	Geospatial  []GeospatialEntry `json:"geospatial"`
	GeneratedAt string            `json:"generated_at"`
}

// LogisticsEntry is one supply line of an incident summary.
type LogisticsEntry struct {
	Name     string                  `json:"name"`
	Count    int                     `json:"count"`
	Category entities.SupplyCategory `json:"category"`
	Critical bool                    `json:"critical"`
}

// GeospatialEntry is one located point of an incident summary.
type GeospatialEntry struct {
	Label   string  `json:"label"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Type    string  `json:"type,omitempty"`
	Details string  `json:"details,omitempty"`
}

// incidentSource answers incidentData from the live store when the thread is
// active and from persisted snapshots otherwise.
type incidentSource struct {
	store     *state.Store
	snapshots ports.SnapshotStore
	now       func() time.Time
}

func (s *incidentSource) tool() registry.ToolFunc {
	return func(_ context.Context, args config.Args) (any, error) {
		threadID, err := config.MustGetString(args, "threadId")
		if err != nil {
			return nil, err
		}

		snap, err := s.lookup(threadID)
		if err != nil {
			return nil, err
		}
		return summarize(snap, s.now()), nil
	}
}

func (s *incidentSource) lookup(threadID string) (*entities.Snapshot, error) {
	if s.store != nil {
		snap, err := s.store.Scope(threadID).Snapshot()
		if err == nil {
			return &snap, nil
		}
		if !stdErrors.Is(err, errors.ErrStaleThread) {
			return nil, err
		}
	}
	if s.snapshots == nil {
		return nil, nil
	}
	snap, err := s.snapshots.Load(threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for thread %q: %w", threadID, err)
	}
	return snap, nil
}

func summarize(snap *entities.Snapshot, now time.Time) IncidentData {
	data := IncidentData{
		Logistics:   []LogisticsEntry{},
		Geospatial:  []GeospatialEntry{},
		GeneratedAt: now.UTC().Format(time.RFC3339Nano),
	}
	if snap == nil {
		return data
	}
	for _, item := range snap.Supplies {
		data.Logistics = append(data.Logistics, LogisticsEntry{
			Name:     item.Name,
			Count:    item.Count,
			Category: item.Category,
			Critical: item.Critical,
		})
	}
	for _, m := range snap.Markers {
		data.Geospatial = append(data.Geospatial, GeospatialEntry{
			Label:   m.Title,
			Lat:     m.Lat,
			Lng:     m.Lng,
			Type:    m.Type,
			Details: m.Description,
		})
	}
	return data
}
