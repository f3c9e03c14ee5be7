package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"masterdata-web/internal/config"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory service.MasterStore.
type memStore struct {
	mu     sync.Mutex
	groups map[models.MasterType][]models.Group
	rows   map[string][]models.Row
	nextID int64
	audits []*models.ClearAudit
}

func newMemStore() *memStore {
	return &memStore{
		groups: map[models.MasterType][]models.Group{
			models.MasterItem: {{ID: 1, MasterType: models.MasterItem, Name: "GENERAL"}, {ID: 2, MasterType: models.MasterItem, Name: "PAPER"}},
			models.MasterHSN:  {{ID: 5, MasterType: models.MasterHSN, Name: "HSN"}},
		},
		rows: make(map[string][]models.Row),
	}
}

func rowsKey(t *rules.Table, groupID int64) string {
	return string(t.Type) + ":" + models.FormatValue(groupID)
}

func (s *memStore) GetGroups(_ context.Context, t *rules.Table) ([]models.Group, error) {
	return s.groups[t.Type], nil
}

func (s *memStore) GetGroup(_ context.Context, t *rules.Table, groupID int64) (*models.Group, error) {
	for _, g := range s.groups[t.Type] {
		if g.ID == groupID {
			g := g
			return &g, nil
		}
	}
	return nil, models.ErrGroupNotFound
}

func (s *memStore) GetRows(_ context.Context, t *rules.Table, groupID int64) ([]models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Row{}
	for _, r := range s.rows[rowsKey(t, groupID)] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *memStore) CountRows(ctx context.Context, t *rules.Table, groupID int64) (int64, error) {
	rows, err := s.GetRows(ctx, t, groupID)
	return int64(len(rows)), err
}

func (s *memStore) InsertRow(_ context.Context, t *rules.Table, groupID int64, row models.Row, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := row.Clone()
	stored[models.RowIDKey] = s.nextID
	key := rowsKey(t, groupID)
	s.rows[key] = append(s.rows[key], stored)
	return s.nextID, nil
}

func (s *memStore) SoftDelete(_ context.Context, t *rules.Table, id int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, rows := range s.rows {
		for i, r := range rows {
			if r.ID() == models.FormatValue(id) {
				s.rows[key] = append(rows[:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return models.ErrRowNotFound
}

func (s *memStore) SoftDeleteAll(_ context.Context, t *rules.Table, groupID int64, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rowsKey(t, groupID)
	n := len(s.rows[key])
	delete(s.rows, key)
	return int64(n), nil
}

func (s *memStore) GetUnits(context.Context) ([]string, error) {
	return []string{"KG", "NOS", "SHEET"}, nil
}

func (s *memStore) GetHSNGroups(context.Context) ([]string, error) {
	return []string{"Paper 18%"}, nil
}

func (s *memStore) GetSubGroups(context.Context, *rules.Table, int64) ([]string, error) {
	return []string{"ART PAPER"}, nil
}

func (s *memStore) GetCountryStates(context.Context) (map[string][]string, error) {
	return map[string][]string{"India": {"Gujarat"}}, nil
}

func (s *memStore) CreateClearAudit(_ context.Context, audit *models.ClearAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, audit)
	return nil
}

func (s *memStore) seed(t *testing.T, mt models.MasterType, groupID int64, rows ...models.Row) {
	t.Helper()
	table, ok := rules.Get(mt)
	require.True(t, ok)
	for _, r := range rows {
		_, err := s.InsertRow(context.Background(), table, groupID, r, "seed")
		require.NoError(t, err)
	}
}

type staticVerifier struct{}

func (staticVerifier) VerifyCredentials(username, password string) (*models.User, error) {
	if username == "admin" && password == "s3cret" {
		return &models.User{ID: 1, Username: username, IsActive: true}, nil
	}
	return nil, models.ErrAuthenticationFailed
}

type recordingQueue struct {
	tasks []*asynq.Task
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type testServer struct {
	app   *fiber.App
	store *memStore
	queue *recordingQueue
}

// newTestServer wires the master, clear and job handlers over an in-memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{UploadMaxSize: 1 << 20, ImportMaxRows: 100}
	store := newMemStore()
	queue := &recordingQueue{}

	excel := service.NewExcelService()
	refs := service.NewReferenceService(store, service.NewMemoryKV(), time.Minute)
	loader := service.NewLoaderService(store, excel)
	importer := service.NewImportService(store, refs)
	eraser := service.NewEraserService(store, staticVerifier{}, refs)
	clears := service.NewClearService(store, eraser, service.NewMemoryKV(), service.NewCaptchaGenerator(20, 1), time.Minute)
	jobs := service.NewImportJobService(queue, service.NewMemoryKV(), time.Hour)

	masters := NewMasterHandler(loader, importer, eraser, excel, jobs, cfg)
	clear := NewClearHandler(clears)
	jobHandler := NewImportJobHandler(jobs)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		username := c.Get("X-Username", "operator")
		c.Locals("username", username)
		return c.Next()
	})
	m := app.Group("/masters")
	m.Get("/", masters.ListMasters)
	m.Get("/:type/groups", masters.ListGroups)
	m.Get("/:type/groups/:group_id/rows", masters.Rows)
	m.Post("/:type/groups/:group_id/upload", masters.Upload)
	m.Post("/:type/groups/:group_id/validate", masters.Validate)
	m.Post("/:type/groups/:group_id/derive", masters.Derive)
	m.Post("/:type/groups/:group_id/import", masters.Import)
	m.Post("/:type/groups/:group_id/import/async", masters.ImportAsync)
	m.Post("/:type/groups/:group_id/export", masters.Export)
	m.Get("/:type/groups/:group_id/template", masters.Template)
	m.Delete("/:type/rows/:id", masters.DeleteRow)
	m.Post("/:type/groups/:group_id/clear/start", clear.Start)
	app.Post("/clear/:flow_id/answer", clear.Answer)
	app.Post("/clear/:flow_id/credentials", clear.Credentials)
	app.Post("/clear/:flow_id/cancel", clear.Cancel)
	app.Get("/imports/:job_id", jobHandler.Status)

	return &testServer{app: app, store: store, queue: queue}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func rowsBody(rows ...models.Row) RowsRequest {
	return RowsRequest{Rows: rows}
}
