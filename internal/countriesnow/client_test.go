package countriesnow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/populytics/populytics/internal/models"
)

func testPayload(country string, year int, value float64) []models.PopulationRecord {
	return []models.PopulationRecord{
		{
			Country: country,
			Counts:  []models.YearCount{{Year: &year, Value: &value}},
		},
	}
}

func TestFetchPopulation_RealAPIFormat(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/countries/population" {
			t.Errorf("Expected path /countries/population, got %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		// Shape taken from the live API: an envelope with error/msg plus a
		// data array of nested per-country records.
		_, _ = w.Write([]byte(`{
			"error": false,
			"msg": "retrieved",
			"data": [
				{
					"country": "Ukraine",
					"code": "UA",
					"iso3": "UKR",
					"populationCounts": [
						{"year": 1960, "value": 42664652},
						{"year": 1961, "value": 43203299}
					]
				},
				{
					"country": "Poland",
					"code": "PL",
					"iso3": "POL",
					"populationCounts": [
						{"year": 1960, "value": 29637450}
					]
				}
			]
		}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, 3, 10*time.Millisecond)

	records, err := client.FetchPopulation(context.Background())
	if err != nil {
		t.Fatalf("FetchPopulation failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Country != "Ukraine" || len(records[0].Counts) != 2 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[0].Counts[0].Year == nil || *records[0].Counts[0].Year != 1960 {
		t.Errorf("Year not decoded: %+v", records[0].Counts[0])
	}
	if records[0].Counts[0].Value == nil || *records[0].Counts[0].Value != 42664652 {
		t.Errorf("Value not decoded: %+v", records[0].Counts[0])
	}
}

func TestFetchPopulation_MissingFieldsDecodeAsNil(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"error": false,
			"data": [{"country": "Nowhere", "populationCounts": [{"year": 2000}]}]
		}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, 3, 10*time.Millisecond)

	records, err := client.FetchPopulation(context.Background())
	if err != nil {
		t.Fatalf("FetchPopulation failed: %v", err)
	}
	// Absent values stay nil so the normalizer can reject them precisely.
	if records[0].Counts[0].Value != nil {
		t.Errorf("Missing value should decode as nil, got %v", *records[0].Counts[0].Value)
	}
}

func TestFetchPopulation_APIError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": true, "msg": "something broke", "data": []}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, 3, 10*time.Millisecond)

	if _, err := client.FetchPopulation(context.Background()); err == nil {
		t.Error("Envelope error flag should surface as an error")
	}
}

func TestFetchPopulation_RetriesServerErrors(t *testing.T) {
	attempts := 0
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": false, "data": []}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, 3, time.Millisecond)

	if _, err := client.FetchPopulation(context.Background()); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestCache_SaveLatestLoad(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	if path, err := cache.Latest(); err != nil || path != "" {
		t.Errorf("Empty cache should report no snapshot, got %q, %v", path, err)
	}

	year := 2000
	value := 123.0
	saved, err := cache.Save(testPayload("Ukraine", year, value))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	latest, err := cache.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != saved {
		t.Errorf("Latest = %q, want %q", latest, saved)
	}

	loaded, err := cache.Load(latest)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Country != "Ukraine" {
		t.Errorf("Round trip lost data: %+v", loaded)
	}
	if loaded[0].Counts[0].Year == nil || *loaded[0].Counts[0].Year != year {
		t.Errorf("Round trip lost year: %+v", loaded[0].Counts[0])
	}
}
