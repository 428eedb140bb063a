package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/regsite/registry-backend/internal/config"
)

// Export job statuses as stored under the job's status key.
const (
	ExportStatusPending = "pending"
	ExportStatusDone    = "done"
	ExportStatusFailed  = "failed"
)

// ExportJob is one queued export request.
type ExportJob struct {
	ID     string `json:"id"`
	UserID int    `json:"user_id"`
}

// ExportService queues export jobs for the background worker and
// serves their results back from Redis.
type ExportService struct {
	rdb *redis.Client
	cfg *config.Config
}

// NewExportService creates a new ExportService.
func NewExportService(rdb *redis.Client, cfg *config.Config) *ExportService {
	return &ExportService{rdb: rdb, cfg: cfg}
}

// Enqueue schedules an export of the user's answers and returns the
// job id the caller polls.
func (s *ExportService) Enqueue(ctx context.Context, userID int) (string, error) {
	job := ExportJob{ID: uuid.New().String(), UserID: userID}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExportStatusKey(job.ID), ExportStatusPending, s.cfg.ExportResultTTL).Err(); err != nil {
		return "", fmt.Errorf("record job status: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ExportJobsQueue, raw).Err(); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return job.ID, nil
}

// Status returns a job's status, or "" for an unknown or expired job.
func (s *ExportService) Status(ctx context.Context, jobID string) (string, error) {
	status, err := s.rdb.Get(ctx, config.CacheKey.ExportStatusKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return status, err
}

// Result returns a finished job's CSV payload, or nil while the job is
// still pending or after the result expired.
func (s *ExportService) Result(ctx context.Context, jobID string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExportResultKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return raw, err
}
