package visualize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/populytics/populytics/internal/analysis"
	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	years := []int{2000, 2001, 2002}
	a := []float64{100, 110, 121}
	b := []float64{50, 55, 60}

	var counts [2][]models.YearCount
	for i := range years {
		y := years[i]
		va, vb := a[i], b[i]
		counts[0] = append(counts[0], models.YearCount{Year: &y, Value: &va})
		counts[1] = append(counts[1], models.YearCount{Year: &y, Value: &vb})
	}

	table, err := dataset.Normalize([]models.PopulationRecord{
		{Country: "A", Counts: counts[0]},
		{Country: "B", Counts: counts[1]},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return table.Annotate()
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func assertPNG(t *testing.T, path string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		t.Fatalf("Figure not written: %v", statErr)
	}
	if info.Size() == 0 {
		t.Errorf("Figure %s is empty", filepath.Base(path))
	}
}

func TestPopulationGrowth_SingleCountry(t *testing.T) {
	r := newRenderer(t)
	path, err := r.PopulationGrowth(testTable(t), "A")
	assertPNG(t, path, err)
	if filepath.Base(path) != "population_growth_a.png" {
		t.Errorf("Unexpected filename %s", filepath.Base(path))
	}
}

func TestPopulationGrowth_AllCountries(t *testing.T) {
	r := newRenderer(t)
	path, err := r.PopulationGrowth(testTable(t), "")
	assertPNG(t, path, err)
}

func TestPopulationGrowth_UnknownCountry(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.PopulationGrowth(testTable(t), "Atlantis"); err == nil {
		t.Error("Expected error for unknown country")
	}
}

func TestGrowthPercentage(t *testing.T) {
	r := newRenderer(t)
	path, err := r.GrowthPercentage(testTable(t), "A")
	assertPNG(t, path, err)
}

func TestComparison(t *testing.T) {
	r := newRenderer(t)
	path, err := r.Comparison(testTable(t), []string{"A", "B", "Atlantis"})
	assertPNG(t, path, err)
}

func TestForecastChart(t *testing.T) {
	r := newRenderer(t)
	forecast, err := analysis.Forecast(testTable(t), "A", 2)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	path, err := r.Forecast(forecast)
	assertPNG(t, path, err)
}

func TestGrowthHeatmap(t *testing.T) {
	r := newRenderer(t)
	path, err := r.GrowthHeatmap(testTable(t), []string{"A", "B"})
	assertPNG(t, path, err)
}

func TestRankByLatestValue(t *testing.T) {
	names := rankByLatestValue(testTable(t), 1)
	if len(names) != 1 || names[0] != "A" {
		t.Errorf("rankByLatestValue = %v, want [A]", names)
	}
}

func TestSlug(t *testing.T) {
	if got := slug("United Kingdom"); got != "united_kingdom" {
		t.Errorf("slug = %q, want united_kingdom", got)
	}
}
