// Package models defines the core domain entities for the populytics application.
// These models represent raw per-country population records as delivered by the
// source API, normalized observations, derived statistics, and forecasts.
//
// Terminology:
//   - Observation: one (country, year, population value) data point.
//   - Annotated observation: an observation augmented with year-over-year
//     growth metrics.
//   - Forecast horizon: the number of future years a trend is extrapolated over.
//
// Numeric fields that can be undefined (growth against a missing or zero prior
// value, statistics with a zero denominator) hold NaN in memory and serialize
// as JSON null. They are never coerced to zero, since zero would be
// indistinguishable from genuine no-growth.
package models

// YearCount is a single year's population reading inside a raw record.
// Year and Value are pointers so that fields absent from the source payload
// are distinguishable from legitimate zero readings.
type YearCount struct {
	Year  *int     `json:"year"`
	Value *float64 `json:"value"`
}

// PopulationRecord is the raw nested shape delivered by the source API:
// one record per country carrying its full population time series.
// Years within a record are not guaranteed to be sorted or contiguous.
type PopulationRecord struct {
	Country string      `json:"country"`
	Code    string      `json:"code,omitempty"`
	ISO3    string      `json:"iso3,omitempty"`
	Counts  []YearCount `json:"populationCounts"`
}
