package service

import (
	"context"
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/utils"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const clearFlowKeyPrefix = "clear:flow:"

// ClearService drives the confirmation flow in front of the eraser. Flow state lives in the
// KV store so any web instance can continue it.
type ClearService struct {
	store   MasterStore
	eraser  *EraserService
	flows   KVStore
	captcha *CaptchaGenerator
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewClearService(store MasterStore, eraser *EraserService, flows KVStore, captcha *CaptchaGenerator, ttl time.Duration) *ClearService {
	return &ClearService{
		store:   store,
		eraser:  eraser,
		flows:   flows,
		captcha: captcha,
		ttl:     ttl,
		logger:  utils.GetLogger(),
	}
}

// Start opens a flow at the first confirmation. A group without rows short-circuits with
// NoData and no flow is created.
func (s *ClearService) Start(ctx context.Context, t *rules.Table, groupID int64, actor string) (models.ClearView, error) {
	group, err := s.store.GetGroup(ctx, t, groupID)
	if err != nil {
		return models.ClearView{}, err
	}
	count, err := s.store.CountRows(ctx, t, group.ID)
	if err != nil {
		return models.ClearView{}, err
	}
	if count == 0 {
		return models.ClearView{Step: models.StepIdle, NoData: true, Message: "There is no data to clear"}, nil
	}

	state := models.ClearState{
		FlowID:     uuid.New().String(),
		MasterType: t.Type,
		GroupID:    group.ID,
		Step:       models.StepIdle,
		Actor:      actor,
	}
	state, err = Transition(state, StartEvent{}, s.captcha.Next)
	if err != nil {
		return models.ClearView{}, err
	}
	if err := s.save(ctx, state); err != nil {
		return models.ClearView{}, err
	}
	return state.View(), nil
}

// Answer handles one confirmation prompt.
func (s *ClearService) Answer(ctx context.Context, flowID, actor string, yes bool, answer int) (models.ClearView, error) {
	state, err := s.loadOwned(ctx, flowID, actor)
	if err != nil {
		return models.ClearView{}, err
	}
	state, err = Transition(state, AnswerEvent{Yes: yes, CaptchaAnswer: answer}, s.captcha.Next)
	if err != nil {
		return models.ClearView{}, err
	}
	return state.View(), s.persist(ctx, state)
}

// Cancel abandons the flow and forgets its state.
func (s *ClearService) Cancel(ctx context.Context, flowID, actor string) (models.ClearView, error) {
	state, err := s.loadOwned(ctx, flowID, actor)
	if err != nil {
		return models.ClearView{}, err
	}
	state, _ = Transition(state, CancelEvent{}, s.captcha.Next)
	return state.View(), s.persist(ctx, state)
}

// SubmitCredentials runs the eraser for a flow that passed all confirmations. Failed
// authentication keeps the flow at the credentials step.
func (s *ClearService) SubmitCredentials(ctx context.Context, flowID, actor string, creds models.Credentials, reason string) (models.ClearView, error) {
	state, err := s.loadOwned(ctx, flowID, actor)
	if err != nil {
		return models.ClearView{}, err
	}
	state, err = Transition(state, SubmitCredentialsEvent{Username: creds.Username, Reason: reason}, s.captcha.Next)
	if err != nil {
		return models.ClearView{}, err
	}

	t, err := rules.Lookup(string(state.MasterType))
	if err != nil {
		return models.ClearView{}, err
	}

	result, clearErr := s.eraser.ClearGroup(ctx, t, state.GroupID, creds, state.Reason)
	switch {
	case clearErr == nil:
		state, err = Transition(state, ClearedEvent{Count: result.DeletedCount}, s.captcha.Next)
	case errors.Is(clearErr, models.ErrAuthenticationFailed), errors.Is(clearErr, models.ErrReasonRequired):
		state, err = Transition(state, AuthFailedEvent{Message: clearErr.Error()}, s.captcha.Next)
	default:
		return models.ClearView{}, clearErr
	}
	if err != nil {
		return models.ClearView{}, err
	}

	if perr := s.persist(ctx, state); perr != nil {
		return models.ClearView{}, perr
	}
	return state.View(), clearErr
}

// persist saves a flow that is still in progress and drops a finished or abandoned one.
func (s *ClearService) persist(ctx context.Context, state models.ClearState) error {
	if state.Step == models.StepIdle || state.Step == models.StepDone {
		if err := s.flows.Del(ctx, clearFlowKeyPrefix+state.FlowID); err != nil {
			s.logger.WithError(err).WithField("flow_id", state.FlowID).Warn("Failed to drop clear flow")
		}
		return nil
	}
	return s.save(ctx, state)
}

func (s *ClearService) save(ctx context.Context, state models.ClearState) error {
	state.UpdatedAt = time.Now()
	if err := setJSON(ctx, s.flows, clearFlowKeyPrefix+state.FlowID, state, s.ttl); err != nil {
		return fmt.Errorf("failed to save clear flow: %w", err)
	}
	return nil
}

func (s *ClearService) load(ctx context.Context, flowID string) (models.ClearState, error) {
	var state models.ClearState
	err := getJSON(ctx, s.flows, clearFlowKeyPrefix+flowID, &state)
	if errors.Is(err, errKeyNotFound) {
		return state, models.ErrFlowNotFound
	}
	if err != nil {
		return state, fmt.Errorf("failed to load clear flow: %w", err)
	}
	return state, nil
}

// loadOwned loads a flow only for the operator who started it. Other operators see it as missing.
func (s *ClearService) loadOwned(ctx context.Context, flowID, actor string) (models.ClearState, error) {
	state, err := s.load(ctx, flowID)
	if err != nil {
		return state, err
	}
	if state.Actor != actor {
		return models.ClearState{}, models.ErrFlowNotFound
	}
	return state, nil
}
