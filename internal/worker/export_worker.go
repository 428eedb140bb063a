package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/export"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/rs/zerolog"
)

const ExportPollTimeout = 1 * time.Second

// ExportWorker drains the export job queue: it flattens a user's
// answers to CSV and parks the result in Redis for the API to serve.
type ExportWorker struct {
	answers *service.AnswerService
	rdb     *redis.Client
	cfg     *config.Config
	log     zerolog.Logger
}

func NewExportWorker(answers *service.AnswerService, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *ExportWorker {
	return &ExportWorker{
		answers: answers,
		rdb:     rdb,
		cfg:     cfg,
		log:     log.With().Str("component", "export_worker").Logger(),
	}
}

func (w *ExportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExportWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return

		default:
			item, err := w.rdb.BLPop(ctx, ExportPollTimeout, config.WorkerKey.ExportJobsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var job service.ExportJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.run(ctx, job)
		}
	}
}

func (w *ExportWorker) run(ctx context.Context, job service.ExportJob) {
	recs, err := w.answers.ExportForUser(ctx, job.UserID)
	if err != nil {
		w.fail(ctx, job, err)
		return
	}
	data, err := export.MarshalCSV(recs)
	if err != nil {
		w.fail(ctx, job, err)
		return
	}

	pipe := w.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExportResultKey(job.ID), data, w.cfg.ExportResultTTL)
	pipe.Set(ctx, config.CacheKey.ExportStatusKey(job.ID), service.ExportStatusDone, w.cfg.ExportResultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("store export result failed")
		return
	}
	w.log.Info().Str("job_id", job.ID).Int("user_id", job.UserID).Int("rows", len(recs)).Msg("export finished")
}

func (w *ExportWorker) fail(ctx context.Context, job service.ExportJob, cause error) {
	w.log.Error().Err(cause).Str("job_id", job.ID).Int("user_id", job.UserID).Msg("export failed")
	if err := w.rdb.Set(ctx, config.CacheKey.ExportStatusKey(job.ID), service.ExportStatusFailed, w.cfg.ExportResultTTL).Err(); err != nil {
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("record failure status failed")
	}
}
