package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Importer persists a validated row set.
type Importer interface {
	Import(ctx context.Context, t *rules.Table, groupID int64, rows []models.Row, actor string) (*models.ImportResult, error)
}

// JobRecorder stores the outcome of an import job for polling.
type JobRecorder interface {
	Complete(ctx context.Context, jobID string, result *models.ImportResult, runErr error) error
}

type ImportTaskHandler struct {
	importer Importer
	jobs     JobRecorder
	logger   *logrus.Logger
}

func NewImportTaskHandler(importer Importer, jobs JobRecorder) *ImportTaskHandler {
	return &ImportTaskHandler{
		importer: importer,
		jobs:     jobs,
		logger:   utils.GetLogger(),
	}
}

// Handle runs one queued import and records its result. A batch rejected by validation is a
// recorded outcome, not a task failure.
func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var job models.ImportJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{
		"job_id":      job.JobID,
		"master_type": job.MasterType,
		"group_id":    job.GroupID,
		"rows":        len(job.Rows),
	})
	log.Info("Starting import job")

	t, err := rules.Lookup(string(job.MasterType))
	if err != nil {
		return h.complete(ctx, log, job, nil, err)
	}

	result, err := h.importer.Import(ctx, t, job.GroupID, job.Rows, job.Actor)
	return h.complete(ctx, log, job, result, err)
}

func (h *ImportTaskHandler) complete(ctx context.Context, log *logrus.Entry, job models.ImportJob, result *models.ImportResult, runErr error) error {
	if err := h.jobs.Complete(ctx, job.JobID, result, runErr); err != nil {
		log.WithError(err).Error("Failed to store import result")
		return fmt.Errorf("failed to store import result: %w", err)
	}

	var failed *models.ValidationFailedError
	switch {
	case runErr == nil:
		log.WithField("imported", result.ImportedRows).Info("Import job completed")
		return nil
	case errors.As(runErr, &failed):
		log.Info("Import job rejected by validation")
		return nil
	}
	log.WithError(runErr).Error("Import job failed")
	return runErr
}
