package service

import (
	"context"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"strings"
	"sync"

	"github.com/hibiken/asynq"
)

// fakeStore is an in-memory MasterStore keyed by master type and group id.
type fakeStore struct {
	mu       sync.Mutex
	groups   map[models.MasterType][]models.Group
	rows     map[string][]models.Row
	deleted  map[string]int
	nextID   int64
	audits   []*models.ClearAudit
	failOn   map[string]error // natural key value -> insert error
	rowsErr  error
	refLoads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups: map[models.MasterType][]models.Group{
			models.MasterItem:      {{ID: 1, MasterType: models.MasterItem, Name: "GENERAL"}, {ID: 2, MasterType: models.MasterItem, Name: "PAPER"}},
			models.MasterHSN:       {{ID: 1, MasterType: models.MasterHSN, Name: "HSN"}},
			models.MasterTool:      {{ID: 3, MasterType: models.MasterTool, Name: "PLATES"}},
			models.MasterSparePart: {{ID: 4, MasterType: models.MasterSparePart, Name: "BEARINGS"}},
		},
		rows:    make(map[string][]models.Row),
		deleted: make(map[string]int),
		failOn:  make(map[string]error),
		nextID:  100,
	}
}

func groupKey(t *rules.Table, groupID int64) string {
	return string(t.Type) + ":" + models.FormatValue(groupID)
}

func (s *fakeStore) GetGroups(_ context.Context, t *rules.Table) ([]models.Group, error) {
	return s.groups[t.Type], nil
}

func (s *fakeStore) GetGroup(_ context.Context, t *rules.Table, groupID int64) (*models.Group, error) {
	for _, g := range s.groups[t.Type] {
		if g.ID == groupID {
			g := g
			return &g, nil
		}
	}
	return nil, models.ErrGroupNotFound
}

func (s *fakeStore) GetRows(_ context.Context, t *rules.Table, groupID int64) ([]models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rowsErr != nil {
		return nil, s.rowsErr
	}
	out := []models.Row{}
	for _, r := range s.rows[groupKey(t, groupID)] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *fakeStore) CountRows(ctx context.Context, t *rules.Table, groupID int64) (int64, error) {
	rows, err := s.GetRows(ctx, t, groupID)
	return int64(len(rows)), err
}

func (s *fakeStore) InsertRow(_ context.Context, t *rules.Table, groupID int64, row models.Row, actor string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[strings.ToLower(row.String(t.NaturalKey[0]))]; ok {
		return 0, err
	}
	s.nextID++
	stored := row.Clone()
	stored[models.RowIDKey] = s.nextID
	stored["createdBy"] = actor
	key := groupKey(t, groupID)
	s.rows[key] = append(s.rows[key], stored)
	return s.nextID, nil
}

func (s *fakeStore) SoftDelete(_ context.Context, t *rules.Table, id int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, rows := range s.rows {
		if !strings.HasPrefix(key, string(t.Type)+":") {
			continue
		}
		for i, r := range rows {
			if r.ID() == models.FormatValue(id) {
				s.rows[key] = append(rows[:i], rows[i+1:]...)
				s.deleted[key]++
				return nil
			}
		}
	}
	return models.ErrRowNotFound
}

func (s *fakeStore) SoftDeleteAll(_ context.Context, t *rules.Table, groupID int64, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := groupKey(t, groupID)
	n := len(s.rows[key])
	s.deleted[key] += n
	delete(s.rows, key)
	return int64(n), nil
}

func (s *fakeStore) GetUnits(context.Context) ([]string, error) {
	s.mu.Lock()
	s.refLoads++
	s.mu.Unlock()
	return testReference().Units, nil
}

func (s *fakeStore) GetHSNGroups(context.Context) ([]string, error) {
	return testReference().HSNGroups, nil
}

func (s *fakeStore) GetSubGroups(context.Context, *rules.Table, int64) ([]string, error) {
	return testReference().SubGroups, nil
}

func (s *fakeStore) GetCountryStates(context.Context) (map[string][]string, error) {
	return testReference().CountryStates, nil
}

func (s *fakeStore) CreateClearAudit(_ context.Context, audit *models.ClearAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, audit)
	return nil
}

func (s *fakeStore) seed(t *rules.Table, groupID int64, rows ...models.Row) {
	for _, r := range rows {
		s.InsertRow(context.Background(), t, groupID, r, "seed")
	}
}

// fakeVerifier accepts exactly one username/password pair.
type fakeVerifier struct {
	username, password string
	calls              int
}

func (v *fakeVerifier) VerifyCredentials(username, password string) (*models.User, error) {
	v.calls++
	if username == v.username && password == v.password {
		return &models.User{ID: 1, Username: username, IsActive: true}, nil
	}
	return nil, models.ErrAuthenticationFailed
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}
