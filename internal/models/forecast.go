package models

import "errors"

// ForecastResult is one country's observed rows concatenated with Horizon
// extrapolated rows, ordered by year ascending. Slope and Intercept describe
// the fitted linear trend; MSE and R2 are fit diagnostics only and never gate
// whether a forecast is produced. A single-point series yields a degenerate
// zero-slope fit rather than an error.
type ForecastResult struct {
	Country   string        `json:"country"`
	Rows      []Observation `json:"rows"`
	Slope     float64       `json:"slope"`
	Intercept float64       `json:"intercept"`
	MSE       float64       `json:"mse"`
	R2        float64       `json:"r2"`
	Horizon   int           `json:"horizon"`
}

// Observed returns only the rows backed by source data.
func (f *ForecastResult) Observed() []Observation {
	return f.splitRows(false)
}

// Predicted returns only the extrapolated rows.
func (f *ForecastResult) Predicted() []Observation {
	return f.splitRows(true)
}

func (f *ForecastResult) splitRows(predicted bool) []Observation {
	var rows []Observation
	for _, row := range f.Rows {
		if row.Predicted == predicted {
			rows = append(rows, row)
		}
	}
	return rows
}

// Validate checks that the forecast rows form a plausible series.
func (f *ForecastResult) Validate() error {
	if f.Country == "" {
		return errors.New("forecast country must not be empty")
	}
	if f.Horizon < 1 {
		return errors.New("forecast horizon must be at least 1")
	}
	if len(f.Predicted()) != f.Horizon {
		return errors.New("forecast must contain exactly horizon predicted rows")
	}
	for i := 1; i < len(f.Rows); i++ {
		if f.Rows[i].Year <= f.Rows[i-1].Year {
			return errors.New("forecast rows must be strictly ordered by year")
		}
	}
	return nil
}
