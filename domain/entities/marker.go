package entities

import "math"

// MapMarker is a point of interest on the tactical map. Markers carry no
// identity and are always replaced as a whole set.
type MapMarker struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string  `json:"type,omitempty" yaml:"type,omitempty"`
	Severity    string  `json:"severity,omitempty" yaml:"severity,omitempty"`
	Lat         float64 `json:"lat" yaml:"lat"`
	Lng         float64 `json:"lng" yaml:"lng"`
}

// HasFiniteCoordinates reports whether both coordinates are finite numbers.
func (m MapMarker) HasFiniteCoordinates() bool {
	return isFinite(m.Lat) && isFinite(m.Lng)
}

// FilterFiniteMarkers returns the markers whose coordinates are finite, in order.
func FilterFiniteMarkers(markers []MapMarker) []MapMarker {
	out := make([]MapMarker, 0, len(markers))
	for _, m := range markers {
		if m.HasFiniteCoordinates() {
			out = append(out, m)
		}
	}
	return out
}

// CloneMarkers returns a copy of markers that shares no backing array.
func CloneMarkers(markers []MapMarker) []MapMarker {
	if markers == nil {
		return []MapMarker{}
	}
	out := make([]MapMarker, len(markers))
	copy(out, markers)
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
