package storage

import (
	"time"

	"github.com/sandeepkv93/assignd/internal/model"
)

// Snapshot is the unit of persistence: the full assignment list in its
// stored (manual) order plus the allocation records derived from it.
type Snapshot struct {
	Assignments []model.Assignment      `json:"assignments"`
	Allocations []model.DailyAllocation `json:"allocations"`
	SavedAt     time.Time               `json:"savedAt"`
}
