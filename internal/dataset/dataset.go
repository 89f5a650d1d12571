// Package dataset implements the population data transformation pipeline:
// flattening raw nested per-country records into one row per (country, year)
// and annotating each country's series with year-over-year growth metrics.
//
// A Table keeps its rows sorted by (country, year) and maintains an explicit
// per-country partition, so grouped computations walk each country's ordered
// slice directly instead of re-scanning the whole table.
package dataset

import (
	"math"
	"sort"

	"github.com/populytics/populytics/internal/models"
)

// Table is an in-memory observation table. It is created once per pipeline
// run and treated as read-only afterwards: Annotate and all downstream
// analyses return fresh values rather than mutating rows in place.
type Table struct {
	rows      []models.Observation
	byCountry map[string][]int // row indexes per country, year ascending
	countries []string         // country names in natural (sorted) row order
}

// New builds a Table from rows, sorting them by (country, year) and indexing
// the per-country partitions. The input slice is copied.
func New(rows []models.Observation) *Table {
	copied := make([]models.Observation, len(rows))
	copy(copied, rows)

	sort.SliceStable(copied, func(i, j int) bool {
		if copied[i].Country != copied[j].Country {
			return copied[i].Country < copied[j].Country
		}
		return copied[i].Year < copied[j].Year
	})

	t := &Table{rows: copied}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.byCountry = make(map[string][]int)
	t.countries = t.countries[:0]
	for i, row := range t.rows {
		if _, seen := t.byCountry[row.Country]; !seen {
			t.countries = append(t.countries, row.Country)
		}
		t.byCountry[row.Country] = append(t.byCountry[row.Country], i)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows in natural (country, year) order.
func (t *Table) Rows() []models.Observation {
	rows := make([]models.Observation, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Countries returns the country names present, in natural row order.
func (t *Table) Countries() []string {
	names := make([]string, len(t.countries))
	copy(names, t.countries)
	return names
}

// HasCountry reports whether the table contains any rows for country.
func (t *Table) HasCountry(country string) bool {
	_, ok := t.byCountry[country]
	return ok
}

// CountryRows returns a copy of one country's rows, year ascending.
// The result is nil when the country is absent.
func (t *Table) CountryRows(country string) []models.Observation {
	idx, ok := t.byCountry[country]
	if !ok {
		return nil
	}
	rows := make([]models.Observation, len(idx))
	for i, ri := range idx {
		rows[i] = t.rows[ri]
	}
	return rows
}

// YearRange returns the minimum and maximum year across the whole table.
// Both are zero when the table is empty.
func (t *Table) YearRange() (minYear, maxYear int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	minYear, maxYear = t.rows[0].Year, t.rows[0].Year
	for _, row := range t.rows[1:] {
		if row.Year < minYear {
			minYear = row.Year
		}
		if row.Year > maxYear {
			maxYear = row.Year
		}
	}
	return minYear, maxYear
}

// Normalize flattens a raw payload into a Table with one row per
// (country, year). Growth fields are left undefined and every row is marked
// observed. A record without a country, or a count entry without a year or
// value, yields a *MalformedInputError.
func Normalize(payload []models.PopulationRecord) (*Table, error) {
	var rows []models.Observation

	for ri, record := range payload {
		if record.Country == "" {
			return nil, &MalformedInputError{RecordIndex: ri, CountIndex: -1, Reason: "missing country"}
		}
		for ci, count := range record.Counts {
			if count.Year == nil {
				return nil, &MalformedInputError{RecordIndex: ri, CountIndex: ci, Reason: "missing year"}
			}
			if count.Value == nil {
				return nil, &MalformedInputError{RecordIndex: ri, CountIndex: ci, Reason: "missing value"}
			}
			rows = append(rows, models.NewObservation(record.Country, *count.Year, *count.Value))
		}
	}

	return New(rows), nil
}

// Annotate returns a new table with year-over-year growth computed within
// each country partition: for every row except a country's earliest,
// growth_value = value[i] - value[i-1] and growth_percentage =
// growth_value / value[i-1] * 100. A zero prior value leaves the percentage
// undefined rather than producing an infinity; downstream aggregation treats
// it as missing, never as zero. Annotation always recomputes from the raw
// values, so annotating an already-annotated table is idempotent.
func (t *Table) Annotate() *Table {
	rows := make([]models.Observation, len(t.rows))
	copy(rows, t.rows)

	for _, idx := range t.byCountry {
		for pos, ri := range idx {
			if pos == 0 {
				rows[ri].GrowthValue = math.NaN()
				rows[ri].GrowthPercentage = math.NaN()
				continue
			}
			prev := rows[idx[pos-1]]
			rows[ri].GrowthValue = rows[ri].Value - prev.Value
			if prev.Value == 0 {
				rows[ri].GrowthPercentage = math.NaN()
			} else {
				rows[ri].GrowthPercentage = rows[ri].GrowthValue / prev.Value * 100
			}
		}
	}

	out := &Table{rows: rows}
	out.reindex()
	return out
}

// Filter returns a new table containing only rows for which keep returns
// true, or nil when nothing matches.
func (t *Table) Filter(keep func(models.Observation) bool) *Table {
	var rows []models.Observation
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return New(rows)
}
