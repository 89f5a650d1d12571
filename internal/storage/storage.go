// Package storage persists the processed observation table to a SQLite
// database. The table is a durability/export sink only: the pipeline always
// recomputes from raw data, and Save replaces the whole population table
// rather than updating it incrementally.
package storage

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

// Store wraps a SQLite database holding the population table.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the population table with the given table's rows and
// recreates the country/year indexes. Undefined growth metrics are stored
// as NULL, never as zero.
func (s *Store) Save(t *dataset.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DROP TABLE IF EXISTS population`,
		`CREATE TABLE population (
			country           TEXT    NOT NULL,
			year              INTEGER NOT NULL,
			value             REAL    NOT NULL,
			growth_value      REAL,
			growth_percentage REAL,
			is_predicted      INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (country, year)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to recreate population table: %w", err)
		}
	}

	insert, err := tx.Prepare(`INSERT INTO population
		(country, year, value, growth_value, growth_percentage, is_predicted)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, row := range t.Rows() {
		if _, err := insert.Exec(
			row.Country,
			row.Year,
			row.Value,
			nullFloat(row.GrowthValue),
			nullFloat(row.GrowthPercentage),
			row.Predicted,
		); err != nil {
			return fmt.Errorf("failed to insert row (%s, %d): %w", row.Country, row.Year, err)
		}
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_country ON population (country)`,
		`CREATE INDEX IF NOT EXISTS idx_year ON population (year)`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load reads the whole population table back into memory.
func (s *Store) Load() (*dataset.Table, error) {
	return s.query(`SELECT country, year, value, growth_value, growth_percentage, is_predicted
		FROM population ORDER BY country, year`)
}

// LoadCountry reads a single country's rows. Returns an empty table when
// the country is absent; the caller decides whether that is an error.
func (s *Store) LoadCountry(country string) (*dataset.Table, error) {
	return s.query(`SELECT country, year, value, growth_value, growth_percentage, is_predicted
		FROM population WHERE country = ? ORDER BY year`, country)
}

func (s *Store) query(q string, args ...any) (*dataset.Table, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query population table: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var (
			obs       models.Observation
			growthVal sql.NullFloat64
			growthPct sql.NullFloat64
		)
		if err := rows.Scan(&obs.Country, &obs.Year, &obs.Value, &growthVal, &growthPct, &obs.Predicted); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		obs.GrowthValue = fromNull(growthVal)
		obs.GrowthPercentage = fromNull(growthPct)
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return dataset.New(observations), nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
