package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TaskImport is the asynq task type of an asynchronous import.
	TaskImport = "masterdata:import"

	importResultKeyPrefix = "import:result:"

	JobQueued    = "queued"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// TaskEnqueuer is the part of asynq.Client the job service uses.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ImportJobService queues imports for the worker and keeps their outcome for polling.
type ImportJobService struct {
	queue   TaskEnqueuer
	results KVStore
	ttl     time.Duration
}

func NewImportJobService(queue TaskEnqueuer, results KVStore, ttl time.Duration) *ImportJobService {
	return &ImportJobService{queue: queue, results: results, ttl: ttl}
}

// NewImportTask builds the asynq task of an import job.
func NewImportTask(job models.ImportJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import job: %w", err)
	}
	return asynq.NewTask(TaskImport, payload, asynq.MaxRetry(0)), nil
}

// Submit assigns a job id, records the job as queued and enqueues it.
func (s *ImportJobService) Submit(ctx context.Context, job models.ImportJob) (*models.ImportJobStatus, error) {
	if s.queue == nil {
		return nil, models.ErrQueueUnavailable
	}
	job.JobID = uuid.New().String()

	task, err := NewImportTask(job)
	if err != nil {
		return nil, err
	}

	status := &models.ImportJobStatus{JobID: job.JobID, Status: JobQueued, UpdatedAt: time.Now()}
	if err := s.Save(ctx, status); err != nil {
		return nil, err
	}
	if _, err := s.queue.EnqueueContext(ctx, task, asynq.TaskID(job.JobID)); err != nil {
		return nil, fmt.Errorf("failed to enqueue import: %w", err)
	}
	return status, nil
}

// Save stores the job status for the configured retention.
func (s *ImportJobService) Save(ctx context.Context, status *models.ImportJobStatus) error {
	status.UpdatedAt = time.Now()
	if err := setJSON(ctx, s.results, importResultKeyPrefix+status.JobID, status, s.ttl); err != nil {
		return fmt.Errorf("failed to store import result: %w", err)
	}
	return nil
}

// Status returns the stored status of a job.
func (s *ImportJobService) Status(ctx context.Context, jobID string) (*models.ImportJobStatus, error) {
	var status models.ImportJobStatus
	err := getJSON(ctx, s.results, importResultKeyPrefix+jobID, &status)
	if errors.Is(err, errKeyNotFound) {
		return nil, models.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import result: %w", err)
	}
	return &status, nil
}

// Complete records the outcome of a job run by the worker.
func (s *ImportJobService) Complete(ctx context.Context, jobID string, result *models.ImportResult, runErr error) error {
	status := &models.ImportJobStatus{JobID: jobID, Status: JobCompleted, Result: result}
	if runErr != nil {
		status.Status = JobFailed
		status.Error = runErr.Error()
		var vfe *models.ValidationFailedError
		if errors.As(runErr, &vfe) {
			status.Validation = vfe.Result
		}
	}
	return s.Save(ctx, status)
}
