// Package visualize renders the analysis results as PNG charts: population
// growth lines, growth-percentage bars, cross-country comparisons, forecast
// overlays, and a growth heat map.
package visualize

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

// topCountries is how many series an all-countries growth chart keeps,
// ranked by latest-year population, to stay readable.
const topCountries = 5

var seriesColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

// Renderer draws charts into an output directory.
type Renderer struct {
	dir string
}

// New creates a Renderer rooted at dir, creating it if needed.
func New(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create figures directory: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// PopulationGrowth draws population-versus-year lines. With a country it
// draws that single series; with an empty country it draws the top five
// countries by latest-year population.
func (r *Renderer) PopulationGrowth(t *dataset.Table, country string) (string, error) {
	p := plot.New()
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Population"
	p.Add(plotter.NewGrid())

	var (
		countries []string
		filename  string
	)
	if country != "" {
		if !t.HasCountry(country) {
			return "", fmt.Errorf("population growth chart: no rows for %q", country)
		}
		countries = []string{country}
		p.Title.Text = fmt.Sprintf("Population growth: %s", country)
		filename = fmt.Sprintf("population_growth_%s.png", slug(country))
	} else {
		countries = rankByLatestValue(t, topCountries)
		p.Title.Text = "Population growth: top countries"
		filename = "population_growth.png"
	}

	for i, name := range countries {
		line, err := plotter.NewLine(seriesXYs(t.CountryRows(name)))
		if err != nil {
			return "", fmt.Errorf("failed to build line for %s: %w", name, err)
		}
		line.Width = vg.Points(2)
		line.Color = seriesColors[i%len(seriesColors)]
		p.Add(line)
		if len(countries) > 1 {
			p.Legend.Add(name, line)
		}
	}

	return r.save(p, 12*vg.Inch, 6*vg.Inch, filename)
}

// GrowthPercentage draws one country's year-over-year growth percentages as
// bars. Years with undefined growth are skipped.
func (r *Renderer) GrowthPercentage(t *dataset.Table, country string) (string, error) {
	rows := t.CountryRows(country)
	if rows == nil {
		return "", fmt.Errorf("growth percentage chart: no rows for %q", country)
	}

	var (
		values plotter.Values
		labels []string
	)
	for _, row := range rows {
		if !row.HasGrowthPercentage() {
			continue
		}
		values = append(values, row.GrowthPercentage)
		labels = append(labels, strconv.Itoa(row.Year))
	}
	if len(values) == 0 {
		return "", fmt.Errorf("growth percentage chart: no defined growth for %q", country)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Population growth percentage: %s", country)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Growth percentage (%)"

	bars, err := plotter.NewBarChart(values, vg.Points(8))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = seriesColors[0]
	p.Add(bars)
	p.NominalX(labels...)

	return r.save(p, 12*vg.Inch, 6*vg.Inch, fmt.Sprintf("growth_percentage_%s.png", slug(country)))
}

// Comparison draws population lines for a set of countries on one plot.
func (r *Renderer) Comparison(t *dataset.Table, countries []string) (string, error) {
	p := plot.New()
	p.Title.Text = "Country population comparison"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Population"
	p.Add(plotter.NewGrid())

	drawn := 0
	for _, name := range countries {
		rows := t.CountryRows(name)
		if rows == nil {
			continue
		}
		line, err := plotter.NewLine(seriesXYs(rows))
		if err != nil {
			return "", fmt.Errorf("failed to build line for %s: %w", name, err)
		}
		line.Width = vg.Points(2)
		line.Color = seriesColors[drawn%len(seriesColors)]
		p.Add(line)
		p.Legend.Add(name, line)
		drawn++
	}
	if drawn == 0 {
		return "", fmt.Errorf("comparison chart: no rows for any of %v", countries)
	}

	return r.save(p, 12*vg.Inch, 6*vg.Inch, "population_comparison.png")
}

// Forecast overlays a country's observed series with its extrapolated
// continuation, drawn dashed.
func (r *Renderer) Forecast(f *models.ForecastResult) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Population forecast: %s", f.Country)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Population"
	p.Add(plotter.NewGrid())

	observed, err := plotter.NewLine(seriesXYs(f.Observed()))
	if err != nil {
		return "", fmt.Errorf("failed to build observed line: %w", err)
	}
	observed.Width = vg.Points(2)
	observed.Color = seriesColors[0]
	p.Add(observed)
	p.Legend.Add("Actual data", observed)

	predicted, err := plotter.NewLine(seriesXYs(f.Predicted()))
	if err != nil {
		return "", fmt.Errorf("failed to build forecast line: %w", err)
	}
	predicted.Width = vg.Points(2)
	predicted.Color = seriesColors[3]
	predicted.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(predicted)
	p.Legend.Add("Forecast", predicted)

	return r.save(p, 12*vg.Inch, 6*vg.Inch, fmt.Sprintf("population_forecast_%s.png", slug(f.Country)))
}

// GrowthHeatmap draws a country-by-year grid of growth percentages.
// Undefined growth renders as the neutral zero color.
func (r *Renderer) GrowthHeatmap(t *dataset.Table, countries []string) (string, error) {
	grid := newGrowthGrid(t, countries)
	if grid == nil {
		return "", fmt.Errorf("heatmap: no rows for any of %v", countries)
	}

	p := plot.New()
	p.Title.Text = "Population growth heat map"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Country"

	heatmap := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	p.Add(heatmap)

	ticks := make([]plot.Tick, len(grid.countries))
	for i, name := range grid.countries {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	return r.save(p, 14*vg.Inch, 8*vg.Inch, "growth_heatmap.png")
}

func (r *Renderer) save(p *plot.Plot, w, h vg.Length, filename string) (string, error) {
	path := filepath.Join(r.dir, filename)
	if err := p.Save(w, h, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return path, nil
}

func seriesXYs(rows []models.Observation) plotter.XYs {
	xys := make(plotter.XYs, len(rows))
	for i, row := range rows {
		xys[i] = plotter.XY{X: float64(row.Year), Y: row.Value}
	}
	return xys
}

// rankByLatestValue returns up to n countries ordered by their latest-year
// population, descending.
func rankByLatestValue(t *dataset.Table, n int) []string {
	type ranked struct {
		name  string
		value float64
	}
	var all []ranked
	for _, name := range t.Countries() {
		rows := t.CountryRows(name)
		all = append(all, ranked{name: name, value: rows[len(rows)-1].Value})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].value > all[j].value })

	if n > len(all) {
		n = len(all)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = all[i].name
	}
	return names
}

// growthGrid adapts the table to plotter.GridXYZ: columns are years, rows
// are countries, Z is growth percentage.
type growthGrid struct {
	countries []string
	years     []int
	z         map[string]map[int]float64
}

func newGrowthGrid(t *dataset.Table, countries []string) *growthGrid {
	g := &growthGrid{z: make(map[string]map[int]float64)}
	yearSet := make(map[int]bool)

	for _, name := range countries {
		rows := t.CountryRows(name)
		if rows == nil {
			continue
		}
		g.countries = append(g.countries, name)
		g.z[name] = make(map[int]float64)
		for _, row := range rows {
			yearSet[row.Year] = true
			if row.HasGrowthPercentage() {
				g.z[name][row.Year] = row.GrowthPercentage
			}
		}
	}
	if len(g.countries) == 0 {
		return nil
	}

	for year := range yearSet {
		g.years = append(g.years, year)
	}
	sort.Ints(g.years)
	return g
}

func (g *growthGrid) Dims() (c, r int) { return len(g.years), len(g.countries) }
func (g *growthGrid) X(c int) float64  { return float64(g.years[c]) }
func (g *growthGrid) Y(r int) float64  { return float64(r) }

func (g *growthGrid) Z(c, r int) float64 {
	v, ok := g.z[g.countries[r]][g.years[c]]
	if !ok || math.IsNaN(v) {
		return 0
	}
	return v
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '_')
		}
	}
	return string(out)
}
