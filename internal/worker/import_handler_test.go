package worker

import (
	"context"
	"testing"
	"time"

	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImporter struct {
	result *models.ImportResult
	err    error
	got    models.ImportJob
}

func (s *stubImporter) Import(_ context.Context, t *rules.Table, groupID int64, rows []models.Row, actor string) (*models.ImportResult, error) {
	s.got = models.ImportJob{MasterType: t.Type, GroupID: groupID, Rows: rows, Actor: actor}
	return s.result, s.err
}

func importTask(t *testing.T, job models.ImportJob) *asynq.Task {
	t.Helper()
	task, err := service.NewImportTask(job)
	require.NoError(t, err)
	return task
}

func TestImportTaskHandler_StoresResult(t *testing.T) {
	jobs := service.NewImportJobService(nil, service.NewMemoryKV(), time.Hour)
	importer := &stubImporter{result: &models.ImportResult{Success: true, TotalRows: 1, ImportedRows: 1}}
	h := NewImportTaskHandler(importer, jobs)
	ctx := context.Background()

	job := models.ImportJob{JobID: "job-1", MasterType: models.MasterLedger, GroupID: 9, Actor: "op",
		Rows: []models.Row{{"ledgerName": "Acme"}}}
	require.NoError(t, h.Handle(ctx, importTask(t, job)))

	assert.Equal(t, models.MasterLedger, importer.got.MasterType)
	assert.Equal(t, int64(9), importer.got.GroupID)
	assert.Equal(t, "Acme", importer.got.Rows[0].String("ledgerName"))

	status, err := jobs.Status(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, service.JobCompleted, status.Status)
	assert.Equal(t, 1, status.Result.ImportedRows)
}

func TestImportTaskHandler_ValidationFailureIsRecorded(t *testing.T) {
	jobs := service.NewImportJobService(nil, service.NewMemoryKV(), time.Hour)
	validation := &models.ValidationResult{Summary: models.Summary{TotalRows: 1}}
	h := NewImportTaskHandler(&stubImporter{err: &models.ValidationFailedError{Result: validation}}, jobs)
	ctx := context.Background()

	err := h.Handle(ctx, importTask(t, models.ImportJob{JobID: "job-2", MasterType: models.MasterItem}))
	require.NoError(t, err)

	status, err := jobs.Status(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, service.JobFailed, status.Status)
	assert.NotNil(t, status.Validation)
}

func TestImportTaskHandler_Failures(t *testing.T) {
	jobs := service.NewImportJobService(nil, service.NewMemoryKV(), time.Hour)
	ctx := context.Background()

	h := NewImportTaskHandler(&stubImporter{err: models.ErrPersistence}, jobs)
	err := h.Handle(ctx, importTask(t, models.ImportJob{JobID: "job-3", MasterType: models.MasterItem}))
	assert.ErrorIs(t, err, models.ErrPersistence)

	err = h.Handle(ctx, importTask(t, models.ImportJob{JobID: "job-4", MasterType: "vehicle"}))
	assert.ErrorIs(t, err, models.ErrUnknownMasterType)
	status, serr := jobs.Status(ctx, "job-4")
	require.NoError(t, serr)
	assert.Equal(t, service.JobFailed, status.Status)

	err = h.Handle(ctx, asynq.NewTask(service.TaskImport, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	_, serr = jobs.Status(ctx, "job-5")
	assert.ErrorIs(t, serr, models.ErrJobNotFound)
}
