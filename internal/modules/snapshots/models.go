package snapshots

import (
	"time"

	"github.com/aristath/market-hunter/internal/modules/scoring"
)

// Snapshot is one archived scan run
type Snapshot struct {
	ID          string                 `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	IndexSet    string                 `json:"index_set"`
	PoolSize    int                    `json:"pool_size"`
	Survived    int                    `json:"survived"`
	Records     []scoring.ScoredRecord `json:"records"`
	Failures    map[string]int         `json:"failures,omitempty"`
}

// Summary is a snapshot row without its records, for listings
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	IndexSet  string    `json:"index_set"`
	PoolSize  int       `json:"pool_size"`
	Survived  int       `json:"survived"`
}
