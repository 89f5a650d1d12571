package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

// DefaultForecastYears is the horizon used when the caller passes a
// non-positive value.
const DefaultForecastYears = 5

// Forecast fits an ordinary least-squares line of population on year for one
// country and extrapolates it over the requested horizon. The result holds
// the country's observed rows followed by one predicted row per future year,
// ordered by year ascending. MSE and R² are diagnostics only; a poor fit
// still produces a forecast.
//
// A country absent from the table returns ErrNoData. A country with a single
// observed year yields a degenerate zero-slope fit: one point cannot
// determine a trend, but the pipeline must not fail on it.
//
// Predicted rows keep their growth fields undefined: growth metrics describe
// transitions between observed data points only.
func Forecast(t *dataset.Table, country string, years int) (*models.ForecastResult, error) {
	if t == nil || t.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if years <= 0 {
		years = DefaultForecastYears
	}

	observed := t.CountryRows(country)
	if observed == nil {
		return nil, fmt.Errorf("forecast %q: %w", country, ErrNoData)
	}

	slope, intercept := fitLine(observed)

	lastYear := observed[len(observed)-1].Year
	rows := make([]models.Observation, 0, len(observed)+years)
	rows = append(rows, observed...)
	for year := lastYear + 1; year <= lastYear+years; year++ {
		row := models.NewObservation(country, year, intercept+slope*float64(year))
		row.Predicted = true
		rows = append(rows, row)
	}

	mse, r2 := fitDiagnostics(observed, slope, intercept)

	return &models.ForecastResult{
		Country:   country,
		Rows:      rows,
		Slope:     slope,
		Intercept: intercept,
		MSE:       mse,
		R2:        r2,
		Horizon:   years,
	}, nil
}

// fitLine performs the OLS regression of value on year. A single observation
// degenerates to a flat line through that point.
func fitLine(rows []models.Observation) (slope, intercept float64) {
	if len(rows) == 1 {
		return 0, rows[0].Value
	}

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = float64(row.Year)
		ys[i] = row.Value
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// fitDiagnostics reports mean squared error and the coefficient of
// determination for the fitted line over the observed rows. R² is undefined
// (NaN) when the observed values have no variance.
func fitDiagnostics(rows []models.Observation, slope, intercept float64) (mse, r2 float64) {
	var ssRes, ssTot, mean float64
	for _, row := range rows {
		mean += row.Value
	}
	mean /= float64(len(rows))

	for _, row := range rows {
		predicted := intercept + slope*float64(row.Year)
		ssRes += (row.Value - predicted) * (row.Value - predicted)
		ssTot += (row.Value - mean) * (row.Value - mean)
	}

	mse = ssRes / float64(len(rows))
	if ssTot == 0 {
		return mse, math.NaN()
	}
	return mse, 1 - ssRes/ssTot
}
