package catalog

import (
	"context"
	"strings"

	"github.com/resq-ai/resq-core/application/config"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/host/registry"
)

const unknownLocation = "Unknown Location"

// MapView is what the DisasterMap renders.
type MapView struct {
	Markers []MarkerView `json:"markers"`
	Center  [2]float64   `json:"center"`
	Zoom    float64      `json:"zoom"`
	// Renders counts store notifications the map has re-rendered on.
	Renders int `json:"renders"`
}

// MarkerView is one rendered marker.
type MarkerView struct {
	entities.MapMarker
	Icon string `json:"icon"`
}

// DisasterMap renders the tactical map and publishes its markers to the
// shared state.
type DisasterMap struct {
	binding
	markers []entities.MapMarker
	center  [2]float64
	zoom    float64
}

func newDisasterMapFactory(defaultCenter [2]float64) registry.ComponentFactory {
	return func(args map[string]any, scope *state.Scope) (registry.Component, error) {
		m := &DisasterMap{
			binding: binding{scope: scope},
			center:  defaultCenter,
			zoom:    config.GetFloatDefault(args, "zoom", 13),
		}
		if c, ok := config.GetFloatSlice(args, "center"); ok && len(c) == 2 {
			m.center = [2]float64{c[0], c[1]}
		}

		objs, _ := config.GetObjects(args, "markers")
		for _, obj := range objs {
			lat, _ := config.GetFloat(obj, "lat")
			lng, _ := config.GetFloat(obj, "lng")
			marker := entities.MapMarker{
				Lat:         lat,
				Lng:         lng,
				Title:       config.GetStringDefault(obj, "title", unknownLocation),
				Description: config.GetStringDefault(obj, "description", ""),
				Type:        config.GetStringDefault(obj, "type", ""),
				Severity:    config.GetStringDefault(obj, "severity", ""),
			}
			if marker.HasFiniteCoordinates() {
				m.markers = append(m.markers, marker)
			}
		}
		return m, nil
	}
}

// Mount writes the map's markers to the store when at least one is valid.
// An empty marker list leaves markers from earlier maps untouched.
func (m *DisasterMap) Mount(_ context.Context) error {
	if len(m.markers) > 0 {
		if _, err := m.scope.ReplaceMarkers(m.markers); err != nil {
			return err
		}
	}
	return m.observe()
}

// View implements registry.Viewer.
func (m *DisasterMap) View() (any, error) {
	if _, err := m.current(); err != nil {
		return nil, err
	}
	markers := make([]MarkerView, 0, len(m.markers))
	for _, marker := range m.markers {
		markers = append(markers, MarkerView{MapMarker: marker, Icon: markerIcon(marker.Type)})
	}
	return MapView{Center: m.center, Zoom: m.zoom, Markers: markers, Renders: m.Renders()}, nil
}

func markerIcon(kind string) string {
	if strings.Contains(strings.ToLower(kind), "fire") {
		return "fire"
	}
	return "default"
}
