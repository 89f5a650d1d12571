package analysis

import (
	"errors"
	"testing"
)

func TestCompare_ReannotatesWithinWindow(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 100}, [2]float64{2001, 110}, [2]float64{2002, 121}))

	view, err := Compare(table, []string{"A"}, 2001, 0)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	rows := view.Rows()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows (2001, 2002), got %d", len(rows))
	}

	// 2001 is now the first retained year, so its growth is undefined even
	// though it was defined in the unfiltered table.
	if rows[0].Year != 2001 || rows[0].HasGrowth() {
		t.Errorf("First retained year must have undefined growth: %+v", rows[0])
	}
	if rows[1].Year != 2002 || rows[1].GrowthValue != 11 {
		t.Errorf("2002 growth_value = %v, want 11", rows[1].GrowthValue)
	}
}

func TestCompare_CountryAndYearFilter(t *testing.T) {
	table := annotated(t,
		rec("A", [2]float64{2000, 1}, [2]float64{2001, 2}, [2]float64{2002, 3}),
		rec("B", [2]float64{2000, 4}, [2]float64{2001, 5}),
		rec("C", [2]float64{2000, 6}),
	)

	view, err := Compare(table, []string{"A", "B"}, 2000, 2001)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if view.Len() != 4 {
		t.Errorf("Expected 4 rows, got %d", view.Len())
	}
	if view.HasCountry("C") {
		t.Error("Country outside the target set must be excluded")
	}
	if minYear, maxYear := view.YearRange(); minYear != 2000 || maxYear != 2001 {
		t.Errorf("Year window not applied: (%d,%d)", minYear, maxYear)
	}
}

func TestCompare_OpenBoundsUseFullRange(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{1990, 1}, [2]float64{2010, 2}))

	view, err := Compare(table, []string{"A"}, 0, 0)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if view.Len() != 2 {
		t.Errorf("Open bounds should retain all rows, got %d", view.Len())
	}
}

func TestCompare_NoMatchIsSoftNoData(t *testing.T) {
	table := annotated(t, rec("A", [2]float64{2000, 1}))

	if _, err := Compare(table, []string{"Z"}, 0, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("Unmatched countries should signal ErrNoData, got %v", err)
	}
	if _, err := Compare(table, []string{"A"}, 2005, 2010); !errors.Is(err, ErrNoData) {
		t.Errorf("Unmatched window should signal ErrNoData, got %v", err)
	}
	if _, err := Compare(table, nil, 0, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("Empty target set should signal ErrNoData, got %v", err)
	}
}
