package models

import (
	"encoding/json"
	"errors"
	"math"
)

// Observation is one normalized (country, year) row. GrowthValue and
// GrowthPercentage are NaN until annotation runs, and stay NaN on each
// country's earliest row (no prior point) and, for the percentage, when the
// prior value is zero. Predicted marks rows produced by trend extrapolation
// rather than observed data.
type Observation struct {
	Country          string
	Year             int
	Value            float64
	GrowthValue      float64
	GrowthPercentage float64
	Predicted        bool
}

// NewObservation returns an observed row with both growth fields undefined.
func NewObservation(country string, year int, value float64) Observation {
	return Observation{
		Country:          country,
		Year:             year,
		Value:            value,
		GrowthValue:      math.NaN(),
		GrowthPercentage: math.NaN(),
	}
}

// HasGrowth reports whether the year-over-year absolute growth is defined.
func (o Observation) HasGrowth() bool {
	return !math.IsNaN(o.GrowthValue)
}

// HasGrowthPercentage reports whether the relative growth is defined.
func (o Observation) HasGrowthPercentage() bool {
	return !math.IsNaN(o.GrowthPercentage)
}

// Validate checks that an observation is structurally sound.
func (o Observation) Validate() error {
	if o.Country == "" {
		return errors.New("observation country must not be empty")
	}
	if o.Year <= 0 {
		return errors.New("observation year must be positive")
	}
	if !o.Predicted && o.Value < 0 {
		return errors.New("observed population value must not be negative")
	}
	return nil
}

// observationJSON is the wire shape of an Observation. Undefined growth
// fields become null rather than NaN, which encoding/json cannot represent.
type observationJSON struct {
	Country          string   `json:"country"`
	Year             int      `json:"year"`
	Value            float64  `json:"value"`
	GrowthValue      *float64 `json:"growth_value"`
	GrowthPercentage *float64 `json:"growth_percentage"`
	Predicted        bool     `json:"is_predicted"`
}

// MarshalJSON encodes undefined growth metrics as null.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{
		Country:          o.Country,
		Year:             o.Year,
		Value:            o.Value,
		GrowthValue:      floatPtr(o.GrowthValue),
		GrowthPercentage: floatPtr(o.GrowthPercentage),
		Predicted:        o.Predicted,
	})
}

// UnmarshalJSON decodes null growth metrics back to NaN.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var j observationJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	o.Country = j.Country
	o.Year = j.Year
	o.Value = j.Value
	o.GrowthValue = floatValue(j.GrowthValue)
	o.GrowthPercentage = floatValue(j.GrowthPercentage)
	o.Predicted = j.Predicted
	return nil
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func floatValue(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
