package countriesnow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/populytics/populytics/internal/models"
)

// Cache stores raw payload snapshots as JSON files in a data directory,
// named population_<timestamp>_<id>.json so successive fetches never clobber
// each other and the newest snapshot is discoverable by name.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir, creating the directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create raw data directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Save writes a fetched payload to a new snapshot file and returns its path.
func (c *Cache) Save(payload []models.PopulationRecord) (string, error) {
	name := fmt.Sprintf("population_%s_%s.json",
		time.Now().UTC().Format("20060102_150405"),
		uuid.New().String()[:8],
	)
	path := filepath.Join(c.dir, name)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Atomic write: temp file then rename.
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to finalize snapshot: %w", err)
	}

	return path, nil
}

// Latest returns the path of the most recent snapshot, or "" when the cache
// is empty. Snapshot names embed a UTC timestamp, so lexicographic order is
// chronological order.
func (c *Cache) Latest() (string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read raw data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "population_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", nil
	}

	sort.Strings(names)
	return filepath.Join(c.dir, names[len(names)-1]), nil
}

// Load reads a snapshot file back into raw records.
func (c *Cache) Load(path string) ([]models.PopulationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var payload []models.PopulationRecord
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return payload, nil
}
