// Package export writes the processed observation table to CSV, JSON, and
// Excel files. Undefined growth metrics stay empty (CSV), null (JSON), or
// blank (Excel) so consumers can tell missing from zero.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

var header = []string{"country", "year", "value", "growth_value", "growth_percentage", "is_predicted"}

// Exporter writes tables into a target directory.
type Exporter struct {
	dir string
}

// New creates an Exporter rooted at dir, creating it if needed.
func New(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// WriteCSV writes the table as a CSV file and returns its path.
func (e *Exporter) WriteCSV(t *dataset.Table, filename string) (string, error) {
	path := filepath.Join(e.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.Rows() {
		record := []string{
			row.Country,
			strconv.Itoa(row.Year),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
			csvFloat(row.GrowthValue, row.HasGrowth()),
			csvFloat(row.GrowthPercentage, row.HasGrowthPercentage()),
			strconv.FormatBool(row.Predicted),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}

// WriteJSON writes the table as a JSON array of row objects (records
// orientation) and returns its path.
func (e *Exporter) WriteJSON(t *dataset.Table, filename string) (string, error) {
	path := filepath.Join(e.dir, filename)

	data, err := json.MarshalIndent(t.Rows(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteExcel writes the table as a single-sheet workbook and returns its path.
func (e *Exporter) WriteExcel(t *dataset.Table, filename string) (string, error) {
	path := filepath.Join(e.dir, filename)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Population Data"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("failed to write header cell: %w", err)
		}
		_ = f.SetColWidth(sheet, cell[:1], cell[:1], 18)
	}

	for i, row := range t.Rows() {
		values := []any{
			row.Country,
			row.Year,
			row.Value,
			excelFloat(row.GrowthValue, row.HasGrowth()),
			excelFloat(row.GrowthPercentage, row.HasGrowthPercentage()),
			row.Predicted,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

// WriteSummaryJSON writes a statistics summary next to the table exports.
func (e *Exporter) WriteSummaryJSON(s *models.StatisticsSummary, filename string) (string, error) {
	path := filepath.Join(e.dir, filename)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}

func csvFloat(v float64, defined bool) string {
	if !defined {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func excelFloat(v float64, defined bool) any {
	if !defined {
		return ""
	}
	return v
}
