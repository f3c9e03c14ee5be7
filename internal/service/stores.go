package service

import (
	"context"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
)

// MasterStore is the persistence the master services depend on. repository.MasterRepository
// implements it.
type MasterStore interface {
	GetGroups(ctx context.Context, t *rules.Table) ([]models.Group, error)
	GetGroup(ctx context.Context, t *rules.Table, groupID int64) (*models.Group, error)
	GetRows(ctx context.Context, t *rules.Table, groupID int64) ([]models.Row, error)
	CountRows(ctx context.Context, t *rules.Table, groupID int64) (int64, error)
	InsertRow(ctx context.Context, t *rules.Table, groupID int64, row models.Row, actor string) (int64, error)
	SoftDelete(ctx context.Context, t *rules.Table, id int64, actor string) error
	SoftDeleteAll(ctx context.Context, t *rules.Table, groupID int64, actor string) (int64, error)

	GetUnits(ctx context.Context) ([]string, error)
	GetHSNGroups(ctx context.Context) ([]string, error)
	GetSubGroups(ctx context.Context, t *rules.Table, groupID int64) ([]string, error)
	GetCountryStates(ctx context.Context) (map[string][]string, error)

	CreateClearAudit(ctx context.Context, audit *models.ClearAudit) error
}

// UserStore is the user lookup of the auth service.
type UserStore interface {
	FindByUsername(username string) (*models.User, error)
	FindByID(id int) (*models.User, error)
	Create(user *models.User) error
}

// CredentialVerifier checks operator credentials before destructive actions.
type CredentialVerifier interface {
	VerifyCredentials(username, password string) (*models.User, error)
}
