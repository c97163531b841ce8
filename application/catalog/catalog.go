// Package catalog defines the ResQ capabilities an agent may invoke: the
// population and incident data tools and the DisasterMap, SupplyInventory,
// ReportGenerator and ReportDownload components.
package catalog

import (
	"time"

	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/application/template"
	"github.com/resq-ai/resq-core/domain/ports"
	"github.com/resq-ai/resq-core/host/registry"
)

// Capability names.
const (
	CountryPopulationTool = "countryPopulation"
	GlobalPopulationTool  = "globalPopulation"
	IncidentDataTool      = "incidentData"
	DisasterMapName       = "DisasterMap"
	SupplyInventoryName   = "SupplyInventory"
	ReportGeneratorName   = "ReportGenerator"
	ReportDownloadName    = "ReportDownload"
)

// DefaultCenter is the map center used when the agent supplies none (Bengaluru).
var DefaultCenter = [2]float64{12.9716, 77.5946}

type catalogConfig struct {
	store         *state.Store
	snapshots     ports.SnapshotStore
	engine        ports.TemplateEngine
	now           func() time.Time
	defaultCenter [2]float64
}

func defaultCatalogConfig() catalogConfig {
	return catalogConfig{
		engine:        template.NewGoTemplateEngine(),
		now:           time.Now,
		defaultCenter: DefaultCenter,
	}
}

// Option configures the catalog.
type Option func(*catalogConfig)

// WithStore lets incidentData read the live state of the active thread.
func WithStore(store *state.Store) Option {
	return func(c *catalogConfig) {
		c.store = store
	}
}

// WithSnapshotStore lets incidentData answer for threads that are no longer active.
func WithSnapshotStore(s ports.SnapshotStore) Option {
	return func(c *catalogConfig) {
		c.snapshots = s
	}
}

// WithTemplateEngine overrides the engine that renders the SITREP prompt.
func WithTemplateEngine(engine ports.TemplateEngine) Option {
	return func(c *catalogConfig) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithClock overrides the time source for report titles and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *catalogConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDefaultCenter sets the map center used when none is supplied.
func WithDefaultCenter(center [2]float64) Option {
	return func(c *catalogConfig) {
		c.defaultCenter = center
	}
}

// Descriptors returns the ResQ capabilities in registration order.
func Descriptors(opts ...Option) []registry.Descriptor {
	cfg := defaultCatalogConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	incidents := &incidentSource{store: cfg.store, snapshots: cfg.snapshots, now: cfg.now}

	return []registry.Descriptor{
		registry.NewTool(CountryPopulationTool,
			"A tool to get population statistics by country with advanced filtering options",
			countryPopulationInput(), countryPopulationOutput(), CountryPopulations),
		registry.NewTool(GlobalPopulationTool,
			"A tool to get global population trends with optional year range filtering",
			globalPopulationInput(), globalPopulationOutput(), GlobalPopulationTrend),
		registry.NewTool(IncidentDataTool,
			"A tool to get the logistics and geospatial records of a conversation thread",
			incidentDataInput(), incidentDataOutput(), incidents.tool()),
		registry.NewComponent(DisasterMapName,
			"Renders a tactical map. Use this when the user asks about locations, disasters, impact zones, or coordinates.",
			DisasterMapSchema(), newDisasterMapFactory(cfg.defaultCenter)),
		registry.NewComponent(SupplyInventoryName,
			"Renders an interactive logistics manifest. Use this when the user discusses supplies, resources, equipment needs, or inventory tracking.",
			SupplyInventorySchema(), newSupplyInventory),
		registry.NewComponent(ReportGeneratorName,
			"Renders a button to generate a formal SITREP (Situation Report). Use this when the user asks for a final report, summary, or handover document.",
			ReportGeneratorSchema(), newReportGeneratorFactory(cfg.engine, cfg.now)),
		registry.NewComponent(ReportDownloadName,
			"Renders a downloadable PDF file card. Use this AFTER generating a text summary.",
			ReportDownloadSchema(), newReportDownloadFactory(cfg.now)),
	}
}

// NewRegistry builds a registry holding the full catalog.
func NewRegistry(opts ...Option) (*registry.Registry, error) {
	return registry.New(registry.WithDescriptors(Descriptors(opts...)...))
}

// SupplyInventoryFactory exposes the SupplyInventory constructor for callers
// registering it under a custom schema.
func SupplyInventoryFactory() registry.ComponentFactory {
	return newSupplyInventory
}

// DisasterMapFactory exposes the DisasterMap constructor.
func DisasterMapFactory(defaultCenter [2]float64) registry.ComponentFactory {
	return newDisasterMapFactory(defaultCenter)
}
