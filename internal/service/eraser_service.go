package service

import (
	"context"
	"errors"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EraserService soft-deletes every row of a group after re-checking the operator's credentials.
type EraserService struct {
	store  MasterStore
	auth   CredentialVerifier
	refs   *ReferenceService
	logger *logrus.Logger
}

func NewEraserService(store MasterStore, auth CredentialVerifier, refs *ReferenceService) *EraserService {
	return &EraserService{
		store:  store,
		auth:   auth,
		refs:   refs,
		logger: utils.GetLogger(),
	}
}

// ClearGroup verifies the credentials and soft-deletes the group's rows. Nothing is deleted
// when the reason is blank or authentication fails. An empty group clears zero rows.
func (s *EraserService) ClearGroup(ctx context.Context, t *rules.Table, groupID int64, creds models.Credentials, reason string) (*models.ClearResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.ErrReasonRequired
	}

	group, err := s.store.GetGroup(ctx, t, groupID)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.VerifyCredentials(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, models.ErrAuthenticationFailed) {
			s.logger.WithFields(logrus.Fields{
				"master_type": t.Type,
				"group":       group.Name,
				"username":    creds.Username,
			}).Warn("Clear rejected: authentication failed")
		}
		return nil, err
	}

	count, err := s.store.SoftDeleteAll(ctx, t, group.ID, user.Username)
	if err != nil {
		return nil, err
	}

	audit := &models.ClearAudit{
		ID:           uuid.New().String(),
		MasterType:   t.Type,
		GroupID:      group.ID,
		Username:     user.Username,
		Reason:       reason,
		DeletedCount: count,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateClearAudit(ctx, audit); err != nil {
		// rows are already deleted; the audit failure is reported in the log only
		s.logger.WithError(err).WithField("audit_id", audit.ID).Error("Failed to write clear audit")
	}

	if t.Type == models.MasterHSN && count > 0 {
		s.refs.Invalidate(ctx)
	}

	s.logger.WithFields(logrus.Fields{
		"master_type": t.Type,
		"group":       group.Name,
		"username":    user.Username,
		"deleted":     count,
		"audit_id":    audit.ID,
	}).Info("Group cleared")

	return &models.ClearResult{DeletedCount: count, AuditID: audit.ID}, nil
}

// DeleteRow soft-deletes one persisted row.
func (s *EraserService) DeleteRow(ctx context.Context, t *rules.Table, id int64, actor string) error {
	if err := s.store.SoftDelete(ctx, t, id, actor); err != nil {
		return err
	}
	if t.Type == models.MasterHSN {
		s.refs.Invalidate(ctx)
	}
	s.logger.WithFields(logrus.Fields{
		"master_type": t.Type,
		"id":          id,
		"actor":       actor,
	}).Info("Row deleted")
	return nil
}
