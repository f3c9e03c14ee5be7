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

const sharedReferenceKey = "masterdata:ref:shared"

// sharedReference is the cached part of the reference data; it does not depend on the group.
type sharedReference struct {
	Units         []string            `json:"units"`
	HSNGroups     []string            `json:"hsn_groups"`
	CountryStates map[string][]string `json:"country_states"`
}

// ReferenceService assembles the reference data a row set is validated against.
type ReferenceService struct {
	store  MasterStore
	cache  KVStore
	ttl    time.Duration
	logger *logrus.Logger
}

func NewReferenceService(store MasterStore, cache KVStore, ttl time.Duration) *ReferenceService {
	return &ReferenceService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: utils.GetLogger(),
	}
}

// Load returns the reference lists for the group plus its persisted rows.
func (s *ReferenceService) Load(ctx context.Context, t *rules.Table, group models.Group) (models.ReferenceData, error) {
	shared, err := s.shared(ctx)
	if err != nil {
		return models.ReferenceData{}, err
	}

	subGroups, err := s.store.GetSubGroups(ctx, t, group.ID)
	if err != nil {
		return models.ReferenceData{}, err
	}

	existing, err := s.store.GetRows(ctx, t, group.ID)
	if err != nil {
		return models.ReferenceData{}, err
	}

	return models.ReferenceData{
		Units:         shared.Units,
		HSNGroups:     shared.HSNGroups,
		SubGroups:     subGroups,
		CountryStates: shared.CountryStates,
		ExistingRows:  existing,
	}, nil
}

// Invalidate drops the cached lists so the next Load reads them again.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, sharedReferenceKey); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate reference cache")
	}
}

func (s *ReferenceService) shared(ctx context.Context) (*sharedReference, error) {
	var cached sharedReference
	err := getJSON(ctx, s.cache, sharedReferenceKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, errKeyNotFound) {
		s.logger.WithError(err).Warn("Reference cache read failed, loading from database")
	}

	units, err := s.store.GetUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	hsn, err := s.store.GetHSNGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load HSN groups: %w", err)
	}
	states, err := s.store.GetCountryStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country states: %w", err)
	}

	fresh := &sharedReference{Units: units, HSNGroups: hsn, CountryStates: states}
	if err := setJSON(ctx, s.cache, sharedReferenceKey, fresh, s.ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache reference data")
	}
	return fresh, nil
}
