package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"masterdata-web/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type validatedData struct {
	Rows       []models.Row            `json:"rows"`
	Validation models.ValidationResult `json:"validation"`
	Messages   []string                `json:"messages"`
}

func TestListMasters(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/masters", nil)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var masters []MasterInfo
	require.NoError(t, json.Unmarshal(env.Data, &masters))
	require.Len(t, masters, 5)
	types := make([]models.MasterType, len(masters))
	for i, m := range masters {
		types[i] = m.Type
	}
	assert.Contains(t, types, models.MasterSparePart)
}

func TestListGroups_UnknownType(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/masters/vehicle/groups", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestRows_EmptyGroupReportsNoData(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/masters/item/groups/1/rows", nil)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data struct {
		NoData bool         `json:"no_data"`
		Rows   []models.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.NoData)
	assert.Empty(t, data.Rows)
}

func TestRows_Paginated(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		s.store.seed(t, models.MasterItem, 1, models.Row{"itemName": name, "stockUnit": "KG"})
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/masters/item/groups/1/rows?page=2&limit=10", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data       []models.Row `json:"data"`
		Pagination struct {
			Total    int64 `json:"total"`
			LastPage int   `json:"last_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, int64(12), body.Pagination.Total)
	assert.Equal(t, 2, body.Pagination.LastPage)
}

func TestValidate_ReportsIssues(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/masters/item/groups/1/validate", rowsBody(
		models.Row{"itemName": "Glue", "stockUnit": "KG"},
		models.Row{"itemName": "glue", "stockUnit": "KG"},
		models.Row{"itemName": "Tape", "stockUnit": "BOX"},
	))

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data validatedData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Validation.IsValid)
	assert.Equal(t, models.StatusDuplicate, data.Validation.Rows[1].RowStatus)
	assert.Equal(t, models.StatusMismatch, data.Validation.Rows[2].RowStatus)
	assert.NotEmpty(t, data.Messages)
}

func TestValidate_BadRequests(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPost, "/masters/item/groups/abc/validate", rowsBody())
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/masters/item/groups/99/validate", rowsBody())
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	many := make([]models.Row, 101)
	for i := range many {
		many[i] = models.Row{"itemName": "x"}
	}
	resp, _ = s.do(t, http.MethodPost, "/masters/item/groups/1/validate", rowsBody(many...))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestImport_RejectsInvalidBatch(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/masters/item/groups/1/import", rowsBody(
		models.Row{"itemName": "Glue", "stockUnit": "KG"},
		models.Row{"itemName": "Tape"},
	))

	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var data struct {
		Validation models.ValidationResult `json:"validation"`
		Messages   []string                `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Validation.Summary.MissingDataCount)
	assert.Contains(t, data.Messages, "StockUnit: 1 row MissingData")
	assert.Empty(t, s.store.rows, "nothing persisted")
}

func TestImport_PersistsValidBatch(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/masters/item/groups/1/import", rowsBody(
		models.Row{"itemName": "Glue", "stockUnit": "KG"},
		models.Row{"itemName": "Tape", "stockUnit": "nos"},
	))

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result models.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ImportedRows)

	resp, _ = s.do(t, http.MethodPost, "/masters/item/groups/1/import", rowsBody(
		models.Row{"itemName": "GLUE", "stockUnit": "KG"},
	))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, "duplicate of a persisted row")
}

func TestImportAsync_QueuesJob(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/masters/item/groups/1/import/async", rowsBody(
		models.Row{"itemName": "Glue", "stockUnit": "KG"},
	))

	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	var status models.ImportJobStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "queued", status.Status)
	require.Len(t, s.queue.tasks, 1)

	resp, env = s.do(t, http.MethodGet, "/imports/"+status.JobID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, _ = s.do(t, http.MethodGet, "/imports/unknown", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDerive_ReturnsDerivedRows(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/masters/item/groups/2/derive", rowsBody(
		models.Row{"quality": "Art Card", "gsm": 300, "manufacturer": "Bilt", "finish": "Gloss"},
	))

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data struct {
		Rows []models.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Rows, 1)
	assert.NotEmpty(t, data.Rows[0].String("itemName"))
}

func uploadRequest(t *testing.T, path, filename string, rows ...[]interface{}) *http.Request {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	data, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_ParsesAndValidates(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/masters/item/groups/1/upload", "GENERAL.xlsx",
		[]interface{}{"Item Name", "Stock Unit"},
		[]interface{}{"Glue", "KG"},
		[]interface{}{"Tape", "BOX"},
	)

	resp, env := s.send(t, req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data validatedData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Glue", data.Rows[0].String("itemName"))
	assert.Equal(t, 1, data.Validation.Summary.MismatchCount)
}

func TestUpload_FilenameMismatch(t *testing.T) {
	s := newTestServer(t)
	req := uploadRequest(t, "/masters/item/groups/1/upload", "PAPER.xlsx",
		[]interface{}{"ItemName"}, []interface{}{"Glue"})

	resp, env := s.send(t, req)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, models.ErrFilenameMismatch.Error())
}

func TestTemplateAndExport_ReturnWorkbooks(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/masters/item/groups/2/template", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "PAPER.xlsx")

	payload, err := json.Marshal(rowsBody(models.Row{"itemName": "Glue", "stockUnit": "BOX"}))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/masters/item/groups/1/export", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}

func TestDeleteRow(t *testing.T) {
	s := newTestServer(t)
	s.store.seed(t, models.MasterItem, 1, models.Row{"itemName": "Glue", "stockUnit": "KG"})

	resp, _ := s.do(t, http.MethodDelete, "/masters/item/rows/1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/masters/item/rows/1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/masters/item/rows/first", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
