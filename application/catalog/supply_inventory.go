package catalog

import (
	"context"

	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/application/validation"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/host/registry"
)

const (
	// lowStockThreshold marks a critical item LOW in the manifest.
	lowStockThreshold = 5
	// criticalLowThreshold counts a critical item in the CRITICAL LOW badge.
	criticalLowThreshold = 10
)

// Stock statuses shown next to each item.
const (
	StatusLow = "LOW"
	StatusOK  = "OK"
)

// InventoryView is what the SupplyInventory renders.
type InventoryView struct {
	Items       []InventoryLine `json:"items"`
	CriticalLow int             `json:"critical_low"`
	TotalUnits  int             `json:"total_units"`
	Renders     int             `json:"renders"`
}

// InventoryLine is one rendered item. CanDecrement is false at zero.
type InventoryLine struct {
	entities.SupplyItem
	Status       string `json:"status"`
	CanDecrement bool   `json:"can_decrement"`
}

type supplyInventoryProps struct {
	InitialItems []entities.SupplyItem `json:"initialItems" validate:"dive"`
}

// SupplyInventory renders the logistics manifest and adjusts counts.
type SupplyInventory struct {
	binding
	initial []entities.SupplyItem
}

func newSupplyInventory(args map[string]any, scope *state.Scope) (registry.Component, error) {
	var props supplyInventoryProps
	if err := validation.Decode(args, &props); err != nil {
		return nil, err
	}
	return &SupplyInventory{binding: binding{scope: scope}, initial: props.InitialItems}, nil
}

// Mount replaces the inventory with the initial items when any were given.
func (s *SupplyInventory) Mount(_ context.Context) error {
	if len(s.initial) > 0 {
		if err := s.scope.ReplaceSupplies(s.initial); err != nil {
			return err
		}
	}
	return s.observe()
}

// Increment adds one unit of the item. Unknown ids are ignored.
func (s *SupplyInventory) Increment(id string) error {
	_, err := s.scope.AdjustSupplyCount(id, 1)
	return err
}

// Decrement removes one unit of the item, never going below zero.
func (s *SupplyInventory) Decrement(id string) error {
	_, err := s.scope.AdjustSupplyCount(id, -1)
	return err
}

// View implements registry.Viewer.
func (s *SupplyInventory) View() (any, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return inventoryView(snap, s.Renders()), nil
}

func inventoryView(snap entities.Snapshot, renders int) InventoryView {
	v := InventoryView{
		Items:      make([]InventoryLine, 0, len(snap.Supplies)),
		TotalUnits: snap.TotalUnits(),
		Renders:    renders,
	}
	for _, item := range snap.Supplies {
		status := StatusOK
		if item.IsLow(lowStockThreshold) {
			status = StatusLow
		}
		if item.IsLow(criticalLowThreshold) {
			v.CriticalLow++
		}
		v.Items = append(v.Items, InventoryLine{SupplyItem: item, Status: status, CanDecrement: item.Count > 0})
	}
	return v
}
