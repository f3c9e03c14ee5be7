package service

import (
	"context"
	"fmt"
	"io"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
)

// LoaderService brings rows into a session, either from the database or from an upload.
type LoaderService struct {
	store MasterStore
	excel *ExcelService
}

func NewLoaderService(store MasterStore, excel *ExcelService) *LoaderService {
	return &LoaderService{store: store, excel: excel}
}

func (s *LoaderService) Groups(ctx context.Context, t *rules.Table) ([]models.Group, error) {
	return s.store.GetGroups(ctx, t)
}

func (s *LoaderService) Group(ctx context.Context, t *rules.Table, groupID int64) (*models.Group, error) {
	return s.store.GetGroup(ctx, t, groupID)
}

// LoadGroup returns the persisted rows of a group. An empty group yields ErrNoData.
func (s *LoaderService) LoadGroup(ctx context.Context, t *rules.Table, groupID int64) ([]models.Row, error) {
	group, err := s.store.GetGroup(ctx, t, groupID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.GetRows(ctx, t, group.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, fmt.Errorf("%w: %s group %s has no rows", models.ErrNoData, t.Type, group.Name)
	}
	return rows, nil
}

// ParseUpload checks the upload's filename against the group and parses it into rows.
func (s *LoaderService) ParseUpload(r io.Reader, filename string, t *rules.Table, group models.Group) ([]models.Row, error) {
	return s.excel.ParseSpreadsheet(r, filename, t, group)
}

// Derive recomputes the derived fields of edited rows.
func (s *LoaderService) Derive(t *rules.Table, group models.Group, rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	t.ApplyDerivations(out, group)
	return out
}
