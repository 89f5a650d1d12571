// Package analysis computes descriptive statistics, linear trend forecasts,
// and cross-country comparisons over an annotated observation table. All
// operations are pure reads of the table; none mutate shared state.
package analysis

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

// ErrNoData signals that a requested country or filter matched nothing.
// It is a normal, expected outcome for callers looping over a country list,
// not a failure.
var ErrNoData = errors.New("no data for requested selection")

// Summarize computes aggregate and extremal indicators over an annotated
// table. Zero-denominator results (for example total growth over a zero
// start population) surface as NaN fields, never as an error. Extremal
// ties resolve to the country that comes first in natural row order.
func Summarize(t *dataset.Table) (*models.StatisticsSummary, error) {
	if t == nil || t.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	minYear, maxYear := t.YearRange()
	countries := t.Countries()

	s := &models.StatisticsSummary{
		TotalCountries: len(countries),
		YearStart:      minYear,
		YearEnd:        maxYear,
	}

	for _, row := range t.Rows() {
		if row.Year == minYear {
			s.TotalPopulationStart += row.Value
		}
		if row.Year == maxYear {
			s.TotalPopulationEnd += row.Value
		}
	}

	if s.TotalPopulationStart == 0 {
		s.TotalGrowthPercentage = math.NaN()
	} else {
		s.TotalGrowthPercentage = (s.TotalPopulationEnd - s.TotalPopulationStart) / s.TotalPopulationStart * 100
	}

	s.AvgAnnualGrowthPercentage = avgAnnualGrowth(t)

	largest, smallest := latestYearExtremes(t, maxYear)
	s.LargestPopulationCountry = largest.Country
	s.LargestPopulationValue = largest.Value
	s.SmallestPopulationCountry = smallest.Country
	s.SmallestPopulationValue = smallest.Value

	s.HighestGrowthCountry, s.HighestGrowthPercentage,
		s.LowestGrowthCountry, s.LowestGrowthPercentage = growthExtremes(t, countries)

	return s, nil
}

// avgAnnualGrowth is a mean of yearly means: for each year, average the
// defined growth percentages of that year's cross-section, then average
// those yearly figures. Years where every row's percentage is undefined
// contribute nothing to the outer mean.
func avgAnnualGrowth(t *dataset.Table) float64 {
	perYear := make(map[int][]float64)
	for _, row := range t.Rows() {
		if row.HasGrowthPercentage() {
			perYear[row.Year] = append(perYear[row.Year], row.GrowthPercentage)
		}
	}
	if len(perYear) == 0 {
		return math.NaN()
	}

	years := make([]int, 0, len(perYear))
	for year := range perYear {
		years = append(years, year)
	}
	sort.Ints(years)

	yearlyMeans := make([]float64, 0, len(years))
	for _, year := range years {
		yearlyMeans = append(yearlyMeans, stat.Mean(perYear[year], nil))
	}
	return stat.Mean(yearlyMeans, nil)
}

// latestYearExtremes finds the largest and smallest population rows in the
// table's final-year cross-section. First occurrence wins on ties.
func latestYearExtremes(t *dataset.Table, maxYear int) (largest, smallest models.Observation) {
	first := true
	for _, row := range t.Rows() {
		if row.Year != maxYear {
			continue
		}
		if first {
			largest, smallest = row, row
			first = false
			continue
		}
		if row.Value > largest.Value {
			largest = row
		}
		if row.Value < smallest.Value {
			smallest = row
		}
	}
	return largest, smallest
}

// growthExtremes computes each country's total growth percentage over its
// own year span and returns the countries achieving the maximum and minimum.
// Countries whose earliest value is zero have undefined growth and are
// skipped. First occurrence wins on ties.
func growthExtremes(t *dataset.Table, countries []string) (highCountry string, highPct float64, lowCountry string, lowPct float64) {
	highPct, lowPct = math.NaN(), math.NaN()

	for _, country := range countries {
		rows := t.CountryRows(country)
		first, last := rows[0], rows[len(rows)-1]
		if first.Value == 0 {
			continue
		}
		pct := (last.Value - first.Value) / first.Value * 100

		if math.IsNaN(highPct) || pct > highPct {
			highCountry, highPct = country, pct
		}
		if math.IsNaN(lowPct) || pct < lowPct {
			lowCountry, lowPct = country, pct
		}
	}
	return highCountry, highPct, lowCountry, lowPct
}
