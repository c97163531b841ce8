package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/resq-ai/resq-core/application/config"
	"github.com/resq-ai/resq-core/application/state"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/ports"
	"github.com/resq-ai/resq-core/host/registry"
)

const defaultReportTitle = "SITREP_Report"

const sitrepPrompt = `[SYSTEM] GENERATE REPORT FROM PROVIDED DATA

DATA CONTEXT:
Logistics:
{{range .Supplies}}- {{.Count}}x {{.Name}} ({{.Category}})
{{end}}
Locations:
{{range .Markers}}- {{.Title}} at [{{fixed 3 .Lat}}, {{fixed 3 .Lng}}]
{{end}}
INSTRUCTIONS:
1. Write a formal Executive Summary based on the data above.
2. Render the 'ReportDownload' component.
   - set reportTitle="{{.Title}}"
   - (Note: The component will self-hydrate the data from Context).
`

// SitrepRequest is what the ReportGenerator hands back to the agent.
type SitrepRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// ReportGenerator turns the current store contents into a SITREP request
// prompt for the agent.
type ReportGenerator struct {
	binding
	engine ports.TemplateEngine
	now    func() time.Time
}

func newReportGeneratorFactory(engine ports.TemplateEngine, now func() time.Time) registry.ComponentFactory {
	return func(_ map[string]any, scope *state.Scope) (registry.Component, error) {
		return &ReportGenerator{binding: binding{scope: scope}, engine: engine, now: now}, nil
	}
}

// Mount starts observing the store.
func (g *ReportGenerator) Mount(_ context.Context) error {
	return g.observe()
}

// Generate renders the SITREP prompt from the latest snapshot.
func (g *ReportGenerator) Generate() (SitrepRequest, error) {
	snap, err := g.current()
	if err != nil {
		return SitrepRequest{}, err
	}

	title := "SITREP_" + g.now().UTC().Format(time.DateOnly)
	out, err := g.engine.Render(sitrepPrompt, struct {
		Title    string
		Supplies []entities.SupplyItem
		Markers  []entities.MapMarker
	}{Title: title, Supplies: snap.Supplies, Markers: snap.Markers})
	if err != nil {
		return SitrepRequest{}, fmt.Errorf("failed to render SITREP prompt: %w", err)
	}
	return SitrepRequest{Title: title, Prompt: string(out)}, nil
}

// View implements registry.Viewer.
func (g *ReportGenerator) View() (any, error) {
	return g.Generate()
}

// ReportDocument is the tabular model of the downloadable SITREP.
type ReportDocument struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Heading     string          `json:"heading"`
	FileName    string          `json:"file_name"`
	Sections    []ReportSection `json:"sections"`
}

// ReportSection is one titled table of the report.
type ReportSection struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReportDownload builds the SITREP document from the store.
type ReportDownload struct {
	binding
	title string
	now   func() time.Time
}

func newReportDownloadFactory(now func() time.Time) registry.ComponentFactory {
	return func(args map[string]any, scope *state.Scope) (registry.Component, error) {
		return &ReportDownload{
			binding: binding{scope: scope},
			title:   config.GetStringDefault(args, "reportTitle", defaultReportTitle),
			now:     now,
		}, nil
	}
}

// Mount starts observing the store.
func (d *ReportDownload) Mount(_ context.Context) error {
	return d.observe()
}

// FileName is the name the document downloads as.
func (d *ReportDownload) FileName() string {
	return d.title + ".pdf"
}

// Document assembles the report from the latest snapshot.
func (d *ReportDownload) Document() (ReportDocument, error) {
	snap, err := d.current()
	if err != nil {
		return ReportDocument{}, err
	}
	return ReportDocument{
		Heading:     "SITREP: INCIDENT REPORT",
		FileName:    d.FileName(),
		GeneratedAt: d.now(),
		Sections: []ReportSection{
			{
				Title:   "1. LOGISTICS MANIFEST",
				Columns: []string{"Item Name", "Quantity", "Category", "Status"},
				Rows:    logisticsRows(snap.Supplies),
			},
			{
				Title:   "2. TACTICAL LOCATIONS",
				Columns: []string{"Location Name", "Type", "Coordinates", "Notes"},
				Rows:    tacticalRows(snap.Markers),
			},
		},
	}, nil
}

// View implements registry.Viewer.
func (d *ReportDownload) View() (any, error) {
	return d.Document()
}

func logisticsRows(items []entities.SupplyItem) [][]string {
	if len(items) == 0 {
		return [][]string{{"No supplies recorded", "-", "-", "-"}}
	}
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		status := "OK"
		if s.Critical {
			status = "CRITICAL"
		}
		rows = append(rows, []string{s.Name, strconv.Itoa(s.Count), strings.ToUpper(string(s.Category)), status})
	}
	return rows
}

func tacticalRows(markers []entities.MapMarker) [][]string {
	if len(markers) == 0 {
		return [][]string{{"No tactical locations identified", "-", "-", "-"}}
	}
	rows := make([][]string, 0, len(markers))
	for _, m := range markers {
		rows = append(rows, []string{
			orDefault(m.Title, "Unknown Point"),
			orDefault(strings.ToUpper(m.Type), "MARKER"),
			fmt.Sprintf("%.4f, %.4f", m.Lat, m.Lng),
			orDefault(m.Description, "No description provided"),
		})
	}
	return rows
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
