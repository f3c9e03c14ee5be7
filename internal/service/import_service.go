package service

import (
	"context"
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// ImportService validates row sets server side and persists the accepted ones.
type ImportService struct {
	store  MasterStore
	refs   *ReferenceService
	logger *logrus.Logger
	now    func() time.Time
}

func NewImportService(store MasterStore, refs *ReferenceService) *ImportService {
	return &ImportService{
		store:  store,
		refs:   refs,
		logger: utils.GetLogger(),
		now:    time.Now,
	}
}

// Validate recomputes derived fields and validates the rows against the group's reference data
// and persisted rows. The returned rows carry the derived values.
func (s *ImportService) Validate(ctx context.Context, t *rules.Table, group models.Group, rows []models.Row) (models.ValidationResult, []models.Row, error) {
	work := make([]models.Row, len(rows))
	for i, row := range rows {
		work[i] = row.Clone()
	}
	t.ApplyDerivations(work, group)

	ref, err := s.refs.Load(ctx, t, group)
	if err != nil {
		return models.ValidationResult{}, nil, err
	}
	return Validate(work, t, group, ref), work, nil
}

// Import re-validates the rows and, when every row is Valid, inserts them one by one.
// Any invalid row rejects the whole batch with a *ValidationFailedError. Rows rejected by the
// database are counted and reported while the others stay persisted.
func (s *ImportService) Import(ctx context.Context, t *rules.Table, groupID int64, rows []models.Row, actor string) (*models.ImportResult, error) {
	group, err := s.store.GetGroup(ctx, t, groupID)
	if err != nil {
		return nil, err
	}

	validation, work, err := s.Validate(ctx, t, *group, rows)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		s.logger.WithFields(logrus.Fields{
			"master_type": t.Type,
			"group":       group.Name,
			"total":       validation.Summary.TotalRows,
			"valid":       validation.Summary.ValidRows,
		}).Info("Import rejected by validation")
		return nil, &models.ValidationFailedError{Result: &validation}
	}

	result := &models.ImportResult{
		TotalRows:     len(work),
		ErrorMessages: []string{},
		ImportTime:    s.now(),
	}
	for i, row := range work {
		if _, err := s.store.InsertRow(ctx, t, group.ID, row, actor); err != nil {
			if errors.Is(err, models.ErrDuplicateRow) {
				result.DuplicateRows++
			} else {
				result.ErrorRows++
			}
			result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.ImportedRows++
	}
	result.Success = result.ErrorRows == 0 && result.DuplicateRows == 0

	if t.Type == models.MasterHSN && result.ImportedRows > 0 {
		s.refs.Invalidate(ctx)
	}

	s.logger.WithFields(logrus.Fields{
		"master_type": t.Type,
		"group":       group.Name,
		"actor":       actor,
		"imported":    result.ImportedRows,
		"duplicates":  result.DuplicateRows,
		"errors":      result.ErrorRows,
	}).Info("Import finished")

	return result, nil
}
