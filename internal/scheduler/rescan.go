package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/market-hunter/internal/modules/rank"
	"github.com/aristath/market-hunter/internal/modules/snapshots"
)

// RescanJob refreshes the scan in the background so the dashboard always
// has a recent result without waiting on a full pool sweep
type RescanJob struct {
	pipeline  *rank.Pipeline
	snapshots *snapshots.Repository
	opts      rank.Options
	keepRuns  int
	log       zerolog.Logger
}

// RescanConfig holds configuration for the rescan job
type RescanConfig struct {
	Log       zerolog.Logger
	Pipeline  *rank.Pipeline
	Snapshots *snapshots.Repository
	Options   rank.Options
	KeepRuns  int // archived runs retained after pruning
}

// NewRescanJob creates a new rescan job
func NewRescanJob(cfg RescanConfig) *RescanJob {
	if cfg.KeepRuns <= 0 {
		cfg.KeepRuns = 50
	}

	return &RescanJob{
		pipeline:  cfg.Pipeline,
		snapshots: cfg.Snapshots,
		opts:      cfg.Options,
		keepRuns:  cfg.KeepRuns,
		log:       cfg.Log.With().Str("job", "rescan").Logger(),
	}
}

// Name returns the job name
func (j *RescanJob) Name() string {
	return "rescan"
}

// Run executes one background rescan
func (j *RescanJob) Run() error {
	opts := j.opts
	opts.Refresh = true // scheduled runs always recompute

	result := j.pipeline.Run(opts)

	if result.Warning != "" {
		j.log.Warn().Str("warning", result.Warning).Msg("Rescan produced no usable records")
	}

	if err := j.snapshots.Save(result); err != nil {
		return fmt.Errorf("failed to archive rescan: %w", err)
	}

	if err := j.snapshots.Prune(j.keepRuns); err != nil {
		// Pruning failure leaves extra rows behind, nothing worse
		j.log.Warn().Err(err).Msg("Failed to prune old scan runs")
	}

	j.log.Info().
		Str("run_id", result.RunID).
		Int("survived", result.Survived).
		Int("top", len(result.Records)).
		Msg("Rescan completed")

	return nil
}
