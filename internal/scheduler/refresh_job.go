package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/victorgreggio/capalloc/internal/application"
)

// RefreshJob re-reads the record source and re-evaluates the full
// batch, keeping the in-memory results current with the data on disk.
type RefreshJob struct {
	app *application.App
	log zerolog.Logger
}

// NewRefreshJob creates a batch refresh job.
func NewRefreshJob(app *application.App, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		app: app,
		log: log.With().Str("job", "batch_refresh").Logger(),
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "batch_refresh"
}

// Run reloads and re-evaluates all alternatives.
func (j *RefreshJob) Run() error {
	batch, err := j.app.EvaluateAll()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("run_id", batch.RunID).
		Int("evaluated", len(batch.Results)).
		Int("dropped", batch.Dropped).
		Dur("elapsed", batch.Elapsed).
		Msg("Batch refreshed")

	return nil
}
