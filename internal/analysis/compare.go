package analysis

import (
	"fmt"

	"github.com/populytics/populytics/internal/dataset"
	"github.com/populytics/populytics/internal/models"
)

// Compare produces a filtered, re-annotated view for a chosen set of
// countries and an inclusive year window. Pass 0 for startYear or endYear to
// leave that bound open. Growth metrics are recomputed inside the window, so
// each country's first retained year has undefined growth: comparisons
// reflect growth within the selected window, not figures carried over from
// outside it.
//
// Returns ErrNoData when no rows match the filter.
func Compare(t *dataset.Table, countries []string, startYear, endYear int) (*dataset.Table, error) {
	if t == nil || t.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("compare: %w", ErrNoData)
	}

	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[c] = true
	}

	filtered := t.Filter(func(row models.Observation) bool {
		if !wanted[row.Country] {
			return false
		}
		if startYear > 0 && row.Year < startYear {
			return false
		}
		if endYear > 0 && row.Year > endYear {
			return false
		}
		return true
	})
	if filtered == nil {
		return nil, fmt.Errorf("compare: %w", ErrNoData)
	}

	return filtered.Annotate(), nil
}
