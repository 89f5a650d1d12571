package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	y0, y1 := 2000, 2001
	v0, v1 := 100.0, 110.0
	table, err := dataset.Normalize([]models.PopulationRecord{
		{Country: "A", Counts: []models.YearCount{
			{Year: &y0, Value: &v0},
			{Year: &y1, Value: &v1},
		}},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return table.Annotate()
}

func TestWriteCSV(t *testing.T) {
	exporter, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	path, err := exporter.WriteCSV(testTable(t), "population.csv")
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "country" || records[0][3] != "growth_value" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	// First-year growth is empty, not "0".
	if records[1][3] != "" || records[1][4] != "" {
		t.Errorf("Undefined growth must export as empty, got %v", records[1])
	}
	if records[2][3] != "10" {
		t.Errorf("growth_value = %q, want 10", records[2][3])
	}
}

func TestWriteJSON(t *testing.T) {
	exporter, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	path, err := exporter.WriteJSON(testTable(t), "population.json")
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"growth_value": null`) {
		t.Errorf("Undefined growth must export as null, got %s", data)
	}

	var rows []models.Observation
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("Exported JSON should round-trip: %v", err)
	}
	if len(rows) != 2 || rows[1].GrowthValue != 10 {
		t.Errorf("Round trip mismatch: %+v", rows)
	}
}

func TestWriteExcel(t *testing.T) {
	exporter, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	path, err := exporter.WriteExcel(testTable(t), "population.xlsx")
	if err != nil {
		t.Fatalf("WriteExcel failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Workbook file is empty")
	}
}
