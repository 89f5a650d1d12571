package models

import (
	"encoding/json"
	"errors"
	"math"
)

// StatisticsSummary is an immutable snapshot of aggregate and extremal
// indicators computed over an annotated observation table. Fields with a
// zero denominator (for example total growth over a zero start population)
// are NaN and serialize as null; extremal country names are empty when the
// underlying metric is undefined for every country.
type StatisticsSummary struct {
	TotalCountries            int
	YearStart                 int
	YearEnd                   int
	TotalPopulationStart      float64
	TotalPopulationEnd        float64
	TotalGrowthPercentage     float64
	AvgAnnualGrowthPercentage float64
	LargestPopulationCountry  string
	LargestPopulationValue    float64
	SmallestPopulationCountry string
	SmallestPopulationValue   float64
	HighestGrowthCountry      string
	HighestGrowthPercentage   float64
	LowestGrowthCountry       string
	LowestGrowthPercentage    float64
}

// Validate checks internal consistency of a summary.
func (s *StatisticsSummary) Validate() error {
	if s.TotalCountries <= 0 {
		return errors.New("summary must cover at least one country")
	}
	if s.YearStart > s.YearEnd {
		return errors.New("summary year range start must not exceed end")
	}
	if !math.IsNaN(s.TotalGrowthPercentage) && s.TotalPopulationStart > 0 {
		want := (s.TotalPopulationEnd - s.TotalPopulationStart) / s.TotalPopulationStart * 100
		if math.Abs(s.TotalGrowthPercentage-want) > 1e-6 {
			return errors.New("total growth percentage inconsistent with start/end population")
		}
	}
	return nil
}

type summaryJSON struct {
	TotalCountries            int      `json:"total_countries"`
	YearRange                 [2]int   `json:"year_range"`
	TotalPopulationStart      float64  `json:"total_population_start"`
	TotalPopulationEnd        float64  `json:"total_population_end"`
	TotalGrowthPercentage     *float64 `json:"total_growth_percentage"`
	AvgAnnualGrowthPercentage *float64 `json:"avg_annual_growth_percentage"`
	LargestPopulationCountry  string   `json:"largest_population_country"`
	LargestPopulationValue    float64  `json:"largest_population_value"`
	SmallestPopulationCountry string   `json:"smallest_population_country"`
	SmallestPopulationValue   float64  `json:"smallest_population_value"`
	HighestGrowthCountry      string   `json:"highest_growth_country"`
	HighestGrowthPercentage   *float64 `json:"highest_growth_percentage"`
	LowestGrowthCountry       string   `json:"lowest_growth_country"`
	LowestGrowthPercentage    *float64 `json:"lowest_growth_percentage"`
}

// MarshalJSON encodes undefined percentages as null.
func (s StatisticsSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		TotalCountries:            s.TotalCountries,
		YearRange:                 [2]int{s.YearStart, s.YearEnd},
		TotalPopulationStart:      s.TotalPopulationStart,
		TotalPopulationEnd:        s.TotalPopulationEnd,
		TotalGrowthPercentage:     floatPtr(s.TotalGrowthPercentage),
		AvgAnnualGrowthPercentage: floatPtr(s.AvgAnnualGrowthPercentage),
		LargestPopulationCountry:  s.LargestPopulationCountry,
		LargestPopulationValue:    s.LargestPopulationValue,
		SmallestPopulationCountry: s.SmallestPopulationCountry,
		SmallestPopulationValue:   s.SmallestPopulationValue,
		HighestGrowthCountry:      s.HighestGrowthCountry,
		HighestGrowthPercentage:   floatPtr(s.HighestGrowthPercentage),
		LowestGrowthCountry:       s.LowestGrowthCountry,
		LowestGrowthPercentage:    floatPtr(s.LowestGrowthPercentage),
	})
}
