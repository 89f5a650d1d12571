package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestForecast_ExactLinearFit(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 100}, [2]float64{2001, 110}, [2]float64{2002, 121}))

	f, err := Forecast(table, "A", 2)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(f.Rows) != 5 {
		t.Fatalf("Expected 3 observed + 2 predicted = 5 rows, got %d", len(f.Rows))
	}
	if math.Abs(f.Slope-10.5) > 1e-9 {
		t.Errorf("Slope = %v, want 10.5", f.Slope)
	}

	predicted := f.Predicted()
	if len(predicted) != 2 {
		t.Fatalf("Expected 2 predicted rows, got %d", len(predicted))
	}
	for i, row := range predicted {
		if row.Year != 2003+i {
			t.Errorf("Predicted year %d, want %d", row.Year, 2003+i)
		}
		if !row.Predicted {
			t.Error("Extrapolated row must be marked predicted")
		}
		if row.HasGrowth() || row.HasGrowthPercentage() {
			t.Error("Predicted rows keep growth metrics undefined")
		}
	}

	// Fitted line through (2000,100),(2001,110),(2002,121) passes 131.33 at 2003.
	if math.Abs(predicted[0].Value-131.3333333333) > 1e-6 {
		t.Errorf("2003 prediction = %v, want ~131.333", predicted[0].Value)
	}

	if err := f.Validate(); err != nil {
		t.Errorf("Forecast should self-validate: %v", err)
	}
}

func TestForecast_RowCountProperty(t *testing.T) {
	table := annotated(t,
		rec("X", [2]float64{1990, 10}, [2]float64{1991, 11}, [2]float64{1993, 14}, [2]float64{1995, 20}),
	)

	for _, horizon := range []int{1, 3, 10} {
		f, err := Forecast(table, "X", horizon)
		if err != nil {
			t.Fatalf("Forecast(%d) failed: %v", horizon, err)
		}
		if len(f.Rows) != 4+horizon {
			t.Errorf("horizon %d: expected %d rows, got %d", horizon, 4+horizon, len(f.Rows))
		}
		predicted := f.Predicted()
		for i, row := range predicted {
			if row.Year != 1996+i {
				t.Errorf("horizon %d: predicted years must be consecutive from 1996, got %d", horizon, row.Year)
			}
		}
	}
}

func TestForecast_DefaultHorizon(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 1}, [2]float64{2001, 2}))

	f, err := Forecast(table, "A", 0)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if f.Horizon != DefaultForecastYears || len(f.Predicted()) != DefaultForecastYears {
		t.Errorf("Non-positive horizon should fall back to %d, got %d", DefaultForecastYears, f.Horizon)
	}
}

func TestForecast_AbsentCountryIsSoftNoData(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 1}))

	_, err := Forecast(table, "Atlantis", 5)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Absent country should signal ErrNoData, got %v", err)
	}
}

func TestForecast_SinglePointDegenerateFit(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 42}))

	f, err := Forecast(table, "A", 3)
	if err != nil {
		t.Fatalf("Single-point series must not fail: %v", err)
	}
	if f.Slope != 0 {
		t.Errorf("Single-point fit must have zero slope, got %v", f.Slope)
	}
	for _, row := range f.Predicted() {
		if row.Value != 42 {
			t.Errorf("Flat fit should extrapolate the single value, got %v", row.Value)
		}
	}
	if f.MSE != 0 {
		t.Errorf("Single-point fit has zero residual, got MSE %v", f.MSE)
	}
}

func TestForecast_DiagnosticsOnPerfectFit(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 10}, [2]float64{2001, 20}, [2]float64{2002, 30}))

	f, err := Forecast(table, "A", 1)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if f.MSE > 1e-18 {
		t.Errorf("Perfect line should have ~0 MSE, got %v", f.MSE)
	}
	if math.Abs(f.R2-1) > 1e-12 {
		t.Errorf("Perfect line should have R² = 1, got %v", f.R2)
	}
}
