package catalog

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/resq-ai/resq-core/application/config"
)

// CountryPopulation is one row of the country dataset.
type CountryPopulation struct {
	CountryCode string  `json:"countryCode"`
	CountryName string  `json:"countryName"`
	Continent   string  `json:"continent"`
	Population  float64 `json:"population"`
	Year        int     `json:"year"`
	GrowthRate  float64 `json:"growthRate"`
}

// GlobalPopulation is one year of the world population trend.
type GlobalPopulation struct {
	Year       int     `json:"year"`
	Population float64 `json:"population"`
	GrowthRate float64 `json:"growthRate"`
}

var countryPopulations = []CountryPopulation{
	{CountryCode: "IND", CountryName: "India", Continent: "Asia", Population: 1441719852, Year: 2024, GrowthRate: 0.92},
	{CountryCode: "CHN", CountryName: "China", Continent: "Asia", Population: 1425178782, Year: 2024, GrowthRate: -0.03},
	{CountryCode: "USA", CountryName: "United States", Continent: "North America", Population: 341814420, Year: 2024, GrowthRate: 0.53},
	{CountryCode: "IDN", CountryName: "Indonesia", Continent: "Asia", Population: 279798049, Year: 2024, GrowthRate: 0.82},
	{CountryCode: "PAK", CountryName: "Pakistan", Continent: "Asia", Population: 245209815, Year: 2024, GrowthRate: 1.91},
	{CountryCode: "NGA", CountryName: "Nigeria", Continent: "Africa", Population: 229152217, Year: 2024, GrowthRate: 2.10},
	{CountryCode: "BRA", CountryName: "Brazil", Continent: "South America", Population: 217637297, Year: 2024, GrowthRate: 0.59},
	{CountryCode: "BGD", CountryName: "Bangladesh", Continent: "Asia", Population: 174701211, Year: 2024, GrowthRate: 1.00},
	{CountryCode: "RUS", CountryName: "Russia", Continent: "Europe", Population: 143957079, Year: 2024, GrowthRate: -0.34},
	{CountryCode: "ETH", CountryName: "Ethiopia", Continent: "Africa", Population: 129719719, Year: 2024, GrowthRate: 2.55},
	{CountryCode: "MEX", CountryName: "Mexico", Continent: "North America", Population: 129388467, Year: 2024, GrowthRate: 0.75},
	{CountryCode: "JPN", CountryName: "Japan", Continent: "Asia", Population: 122631432, Year: 2024, GrowthRate: -0.53},
	{CountryCode: "EGY", CountryName: "Egypt", Continent: "Africa", Population: 114484252, Year: 2024, GrowthRate: 1.56},
	{CountryCode: "PHL", CountryName: "Philippines", Continent: "Asia", Population: 118277063, Year: 2024, GrowthRate: 1.54},
	{CountryCode: "COD", CountryName: "DR Congo", Continent: "Africa", Population: 105625114, Year: 2024, GrowthRate: 3.25},
	{CountryCode: "DEU", CountryName: "Germany", Continent: "Europe", Population: 83252474, Year: 2024, GrowthRate: -0.09},
	{CountryCode: "TUR", CountryName: "Turkey", Continent: "Asia", Population: 86260417, Year: 2024, GrowthRate: 0.51},
	{CountryCode: "GBR", CountryName: "United Kingdom", Continent: "Europe", Population: 67961439, Year: 2024, GrowthRate: 0.34},
	{CountryCode: "ARG", CountryName: "Argentina", Continent: "South America", Population: 46057866, Year: 2024, GrowthRate: 0.56},
	{CountryCode: "AUS", CountryName: "Australia", Continent: "Oceania", Population: 26699482, Year: 2024, GrowthRate: 1.00},
	{CountryCode: "NZL", CountryName: "New Zealand", Continent: "Oceania", Population: 5269939, Year: 2024, GrowthRate: 0.62},
}

var globalPopulationTrend = []GlobalPopulation{
	{Year: 2015, Population: 7426597537, GrowthRate: 1.19},
	{Year: 2016, Population: 7513474238, GrowthRate: 1.17},
	{Year: 2017, Population: 7599822404, GrowthRate: 1.15},
	{Year: 2018, Population: 7683789828, GrowthRate: 1.10},
	{Year: 2019, Population: 7764951032, GrowthRate: 1.06},
	{Year: 2020, Population: 7840952880, GrowthRate: 0.98},
	{Year: 2021, Population: 7909295151, GrowthRate: 0.87},
	{Year: 2022, Population: 7975105156, GrowthRate: 0.83},
	{Year: 2023, Population: 8045311447, GrowthRate: 0.88},
	{Year: 2024, Population: 8118835999, GrowthRate: 0.91},
}

// CountryPopulations filters and sorts the country dataset.
//
// continent matches case-insensitively. sortBy is "population" or
// "growthRate"; without it the dataset order is kept. order defaults to
// "desc". A positive limit truncates the result.
func CountryPopulations(_ context.Context, args config.Args) (any, error) {
	continent, _ := config.GetString(args, "continent")
	sortBy, _ := config.GetString(args, "sortBy")
	order := config.GetStringDefault(args, "order", "desc")
	limit, hasLimit := config.GetFloat(args, "limit")

	rows := make([]CountryPopulation, 0, len(countryPopulations))
	for _, row := range countryPopulations {
		if continent != "" && !strings.EqualFold(row.Continent, continent) {
			continue
		}
		rows = append(rows, row)
	}

	if sortBy != "" {
		key := func(r CountryPopulation) float64 {
			if sortBy == "growthRate" {
				return r.GrowthRate
			}
			return r.Population
		}
		slices.SortStableFunc(rows, func(a, b CountryPopulation) int {
			d := key(a) - key(b)
			if order == "desc" {
				d = -d
			}
			switch {
			case d < 0:
				return -1
			case d > 0:
				return 1
			}
			return 0
		})
	}

	if hasLimit && limit > 0 {
		n := int(math.Floor(limit))
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	return rows, nil
}

// GlobalPopulationTrend returns world population by year, limited to the
// inclusive [startYear, endYear] range when given.
func GlobalPopulationTrend(_ context.Context, args config.Args) (any, error) {
	start, hasStart := config.GetFloat(args, "startYear")
	end, hasEnd := config.GetFloat(args, "endYear")

	rows := make([]GlobalPopulation, 0, len(globalPopulationTrend))
	for _, row := range globalPopulationTrend {
		y := float64(row.Year)
		if (hasStart && y < start) || (hasEnd && y > end) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
