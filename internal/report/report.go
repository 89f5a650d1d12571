// Package report renders human-readable run summaries: a plain-text report
// and a PDF with the same content plus embedded figures.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/populytics/populytics/internal/models"
)

// Writer renders reports into a target directory.
type Writer struct {
	dir string
	now func() time.Time
}

// New creates a Writer rooted at dir, creating it if needed.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// WriteText writes the summary and forecasts as a plain-text report and
// returns its path.
func (w *Writer) WriteText(summary *models.StatisticsSummary, forecasts []*models.ForecastResult, filename string) (string, error) {
	path := filepath.Join(w.dir, filename)

	var b strings.Builder
	for _, line := range w.lines(summary, forecasts) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write text report: %w", err)
	}
	return path, nil
}

// WritePDF writes the report as a PDF, embedding any figure files that
// exist, and returns its path.
func (w *Writer) WritePDF(summary *models.StatisticsSummary, forecasts []*models.ForecastResult, figures []string, filename string) (string, error) {
	path := filepath.Join(w.dir, filename)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Population Analysis Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Population Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+w.now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Courier", "", 9)
	for _, line := range w.lines(summary, forecasts) {
		pdf.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}

	for _, fig := range figures {
		if _, err := os.Stat(fig); err != nil {
			continue
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, figureTitle(fig), "", 1, "L", false, 0, "")
		pdf.ImageOptions(fig, 10, 30, 190, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF report: %w", err)
	}
	return path, nil
}

func (w *Writer) lines(summary *models.StatisticsSummary, forecasts []*models.ForecastResult) []string {
	lines := []string{
		strings.Repeat("=", 64),
		"POPULATION ANALYSIS REPORT",
		"Generated: " + w.now().UTC().Format("2006-01-02 15:04:05 UTC"),
		strings.Repeat("=", 64),
		"",
		"SUMMARY STATISTICS",
		strings.Repeat("-", 64),
		fmt.Sprintf("Countries analyzed:       %d", summary.TotalCountries),
		fmt.Sprintf("Year range:               %d - %d", summary.YearStart, summary.YearEnd),
		fmt.Sprintf("Total population (%d):  %s", summary.YearStart, humanCount(summary.TotalPopulationStart)),
		fmt.Sprintf("Total population (%d):  %s", summary.YearEnd, humanCount(summary.TotalPopulationEnd)),
		fmt.Sprintf("Total growth:             %s", pct(summary.TotalGrowthPercentage)),
		fmt.Sprintf("Avg annual growth:        %s", pct(summary.AvgAnnualGrowthPercentage)),
		"",
		"EXTREMES",
		strings.Repeat("-", 64),
		fmt.Sprintf("Largest population:       %s (%s)", summary.LargestPopulationCountry, humanCount(summary.LargestPopulationValue)),
		fmt.Sprintf("Smallest population:      %s (%s)", summary.SmallestPopulationCountry, humanCount(summary.SmallestPopulationValue)),
		fmt.Sprintf("Highest growth:           %s (%s)", orNone(summary.HighestGrowthCountry), pct(summary.HighestGrowthPercentage)),
		fmt.Sprintf("Lowest growth:            %s (%s)", orNone(summary.LowestGrowthCountry), pct(summary.LowestGrowthPercentage)),
	}

	if len(forecasts) > 0 {
		lines = append(lines,
			"",
			"FORECASTS",
			strings.Repeat("-", 64),
		)
		for _, f := range forecasts {
			predicted := f.Predicted()
			if len(predicted) == 0 {
				continue
			}
			last := predicted[len(predicted)-1]
			lines = append(lines,
				fmt.Sprintf("%s: %s by %d (trend %+.0f/year, R2 %s)",
					f.Country, humanCount(last.Value), last.Year, f.Slope, r2(f.R2)),
			)
		}
	}

	lines = append(lines, "", strings.Repeat("=", 64))
	return lines
}

func figureTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return "Figure"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// humanCount renders a population count with thousands separators.
func humanCount(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func r2(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func orNone(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
