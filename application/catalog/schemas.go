package catalog

import (
	"strings"

	"github.com/resq-ai/resq-core/application/schema"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
)

// Continents accepted by the population dataset.
var continents = []string{"Asia", "Africa", "Europe", "North America", "South America", "Oceania"}

func supplyCategories() []string {
	cats := entities.SupplyCategories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// SupplyItemSchema is the argument shape of one inventory line.
func SupplyItemSchema() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("id", schema.String(schema.NonEmpty())),
		schema.Prop("name", schema.String(schema.NonEmpty())),
		schema.Prop("count", schema.Integer(schema.Min(0))),
		schema.Prop("category", schema.Enum(supplyCategories())),
		schema.Prop("critical", schema.Boolean()),
	})
}

// MarkerSchema is the argument shape of one map marker.
func MarkerSchema() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("lat", schema.Number()),
		schema.Prop("lng", schema.Number()),
		schema.Prop("title", schema.String(schema.Optional())),
		schema.Prop("description", schema.String(schema.Optional())),
		schema.Prop("type", schema.String(
			schema.Default("structural"),
			schema.Describe("Type: fire, medical, flood, structural"),
		)),
		schema.Prop("severity", schema.String(
			schema.Default("high"),
			schema.Describe("Severity: low, medium, high, critical"),
		)),
	})
}

// badCoordinate matches a marker whose lat or lng is NaN or infinite. Only
// those markers are dropped; any other mismatch fails the call.
func badCoordinate(err *errors.SchemaValidationError) bool {
	return schema.NonFinite(err) &&
		(strings.HasSuffix(err.Field, ".lat") || strings.HasSuffix(err.Field, ".lng"))
}

// DisasterMapSchema validates DisasterMap props. Markers with non-finite
// coordinates are dropped rather than failing the whole call.
func DisasterMapSchema() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("center", schema.Array(schema.Number(), schema.Describe("Center lat/lng [lat, lng]"))),
		schema.Prop("zoom", schema.Number(schema.Default(13))),
		schema.Prop("markers", schema.Array(MarkerSchema(), schema.Default([]any{}), schema.DropWhen(badCoordinate))),
	})
}

// SupplyInventorySchema validates SupplyInventory props.
func SupplyInventorySchema() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("initialItems", schema.Array(SupplyItemSchema(),
			schema.Optional(),
			schema.Describe("Initial list of supplies if provided in the prompt"),
		)),
	})
}

// ReportGeneratorSchema validates ReportGenerator props; it takes none.
func ReportGeneratorSchema() *schema.ObjectNode {
	return schema.Object(nil)
}

// ReportDownloadSchema validates ReportDownload props.
func ReportDownloadSchema() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("reportTitle", schema.String(
			schema.Optional(),
			schema.Describe("Name of the file, e.g., 'Indiranagar_Fire_SITREP'"),
		)),
	})
}

func countryPopulationInput() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("continent", schema.String(schema.Optional())),
		schema.Prop("sortBy", schema.Enum([]string{"population", "growthRate"}, schema.Optional())),
		schema.Prop("limit", schema.Number(schema.Optional())),
		schema.Prop("order", schema.Enum([]string{"asc", "desc"}, schema.Optional())),
	})
}

func countryPopulationOutput() *schema.ArrayNode {
	return schema.Array(schema.Object([]schema.Field{
		schema.Prop("countryCode", schema.String()),
		schema.Prop("countryName", schema.String()),
		schema.Prop("continent", schema.Enum(continents)),
		schema.Prop("population", schema.Number()),
		schema.Prop("year", schema.Number()),
		schema.Prop("growthRate", schema.Number()),
	}))
}

func globalPopulationInput() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("startYear", schema.Number(schema.Optional())),
		schema.Prop("endYear", schema.Number(schema.Optional())),
	})
}

func globalPopulationOutput() *schema.ArrayNode {
	return schema.Array(schema.Object([]schema.Field{
		schema.Prop("year", schema.Number()),
		schema.Prop("population", schema.Number()),
		schema.Prop("growthRate", schema.Number()),
	}))
}

func incidentDataInput() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("threadId", schema.String(schema.Describe("Conversation thread to report on"))),
	})
}

func incidentDataOutput() *schema.ObjectNode {
	return schema.Object([]schema.Field{
		schema.Prop("logistics", schema.Array(schema.Object([]schema.Field{
			schema.Prop("name", schema.String()),
			schema.Prop("count", schema.Integer(schema.Min(0))),
			schema.Prop("category", schema.Enum(supplyCategories())),
			schema.Prop("critical", schema.Boolean()),
		}))),
		schema.Prop("geospatial", schema.Array(schema.Object([]schema.Field{
			schema.Prop("label", schema.String()),
			schema.Prop("lat", schema.Number()),
			schema.Prop("lng", schema.Number()),
			schema.Prop("type", schema.String(schema.Optional())),
			schema.Prop("details", schema.String(schema.Optional())),
		}))),
		schema.Prop("generated_at", schema.String()),
	})
}
