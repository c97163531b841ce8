package entities

import "math"

// SupplyCategory classifies a supply item.
type SupplyCategory string

const (
	CategoryMedical   SupplyCategory = "medical"
	CategoryFood      SupplyCategory = "food"
	CategoryEquipment SupplyCategory = "equipment"
)

// SupplyCategories lists every valid category in display order.
func SupplyCategories() []SupplyCategory {
	return []SupplyCategory{CategoryMedical, CategoryFood, CategoryEquipment}
}

// Valid reports whether c is a known category.
func (c SupplyCategory) Valid() bool {
	switch c {
	case CategoryMedical, CategoryFood, CategoryEquipment:
		return true
	default:
		return false
	}
}

// SupplyItem is one line of the logistics manifest for the active thread.
// Count is only ever changed through a clamped delta, so it never goes negative.
type SupplyItem struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Name     string         `json:"name" yaml:"name" validate:"required"`
	Category SupplyCategory `json:"category" yaml:"category" validate:"required,oneof=medical food equipment"`
	Count    int            `json:"count" yaml:"count" validate:"gte=0"`
	Critical bool           `json:"critical" yaml:"critical"`
}

// WithDelta returns a copy of the item with delta applied to Count, clamped
// to [0, math.MaxInt].
func (s SupplyItem) WithDelta(delta int) SupplyItem {
	if delta > 0 && s.Count > math.MaxInt-delta {
		s.Count = math.MaxInt
		return s
	}
	s.Count += delta
	if s.Count < 0 {
		s.Count = 0
	}
	return s
}

// IsLow reports whether a critical item has dropped below threshold.
func (s SupplyItem) IsLow(threshold int) bool {
	return s.Critical && s.Count < threshold
}

// CloneSupplies returns a copy of items that shares no backing array.
func CloneSupplies(items []SupplyItem) []SupplyItem {
	if items == nil {
		return []SupplyItem{}
	}
	out := make([]SupplyItem, len(items))
	copy(out, items)
	return out
}
