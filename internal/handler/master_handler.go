package handler

import (
	"errors"
	"fmt"
	"masterdata-web/internal/config"
	"masterdata-web/internal/middleware"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MasterHandler struct {
	loader   *service.LoaderService
	importer *service.ImportService
	eraser   *service.EraserService
	excel    *service.ExcelService
	jobs     *service.ImportJobService
	cfg      *config.Config
}

func NewMasterHandler(
	loader *service.LoaderService,
	importer *service.ImportService,
	eraser *service.EraserService,
	excel *service.ExcelService,
	jobs *service.ImportJobService,
	cfg *config.Config,
) *MasterHandler {
	return &MasterHandler{
		loader:   loader,
		importer: importer,
		eraser:   eraser,
		excel:    excel,
		jobs:     jobs,
		cfg:      cfg,
	}
}

// RowsRequest is the body of the endpoints working on the grid's rows.
type RowsRequest struct {
	Rows []models.Row `json:"rows"`
}

// FieldInfo describes one grid column to the client.
type FieldInfo struct {
	Key       string   `json:"key"`
	Column    string   `json:"column"`
	Kind      string   `json:"kind"`
	Reference string   `json:"reference,omitempty"`
	Enum      []string `json:"enum,omitempty"`
}

// MasterInfo describes one master type and its rules.
type MasterInfo struct {
	Type          models.MasterType   `json:"type"`
	Label         string              `json:"label"`
	Fields        []FieldInfo         `json:"fields"`
	NaturalKey    []string            `json:"natural_key"`
	Required      []string            `json:"required"`
	GroupRequired map[string][]string `json:"group_required"`
}

func masterInfo(t *rules.Table) MasterInfo {
	fields := make([]FieldInfo, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = FieldInfo{
			Key:       f.Key,
			Column:    f.Column,
			Kind:      f.Kind.String(),
			Reference: string(f.Reference),
			Enum:      f.Enum,
		}
	}
	return MasterInfo{
		Type:          t.Type,
		Label:         t.Label,
		Fields:        fields,
		NaturalKey:    t.NaturalKey,
		Required:      t.Required,
		GroupRequired: t.GroupRequired,
	}
}

func (h *MasterHandler) ListMasters(c *fiber.Ctx) error {
	tables := rules.All()
	out := make([]MasterInfo, len(tables))
	for i, t := range tables {
		out[i] = masterInfo(t)
	}
	return utils.SuccessResponse(c, "Master types retrieved successfully", out)
}

func (h *MasterHandler) ListGroups(c *fiber.Ctx) error {
	t, err := rules.Lookup(c.Params("type"))
	if err != nil {
		return respondError(c, "Unknown master type", err)
	}

	groups, err := h.loader.Groups(c.UserContext(), t)
	if err != nil {
		return respondError(c, "Failed to retrieve groups", err)
	}

	return utils.SuccessResponse(c, "Groups retrieved successfully", groups)
}

// Rows returns the persisted rows of a group. The list is paginated when "page" is given.
func (h *MasterHandler) Rows(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.loader.LoadGroup(c.UserContext(), t, group.ID)
	if errors.Is(err, models.ErrNoData) {
		return utils.SuccessResponse(c, "No data found", fiber.Map{
			"group":   group,
			"rows":    []models.Row{},
			"no_data": true,
		})
	}
	if err != nil {
		return respondError(c, "Failed to load rows", err)
	}

	if c.Query("page") == "" {
		return utils.SuccessResponse(c, "Rows retrieved successfully", fiber.Map{
			"group": group,
			"rows":  rows,
		})
	}

	params := utils.GetPaginationParams(c)
	meta := utils.CalculatePagination(params.Page, params.Limit, int64(len(rows)))
	start, end := utils.PageBounds(params.Page, params.Limit, len(rows))
	return utils.PaginatedResponseBuilder(c, "Rows retrieved successfully", rows[start:end], meta)
}

// Upload parses a spreadsheet for the group and returns its rows with their validation.
func (h *MasterHandler) Upload(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx) are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	f, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", err)
	}
	defer f.Close()

	rows, err := h.loader.ParseUpload(f, file.Filename, t, *group)
	if err != nil {
		return respondError(c, "Failed to parse Excel file", err)
	}
	if err := h.checkRowLimit(rows); err != nil {
		return respondError(c, "Too many rows", err)
	}

	return h.validated(c, t, group, rows, "File parsed successfully")
}

func (h *MasterHandler) Validate(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.parseRows(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}

	return h.validated(c, t, group, rows, "Validation completed")
}

// Derive recomputes the derived columns of edited rows.
func (h *MasterHandler) Derive(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.parseRows(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}

	return utils.SuccessResponse(c, "Derived fields updated", fiber.Map{
		"rows": h.loader.Derive(t, *group, rows),
	})
}

func (h *MasterHandler) Import(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.parseRows(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}

	result, err := h.importer.Import(c.UserContext(), t, group.ID, rows, middleware.Actor(c))
	if err != nil {
		return respondError(c, "Import failed", err)
	}

	message := "Import completed successfully"
	if !result.Success {
		message = fmt.Sprintf("Import completed: %d imported, %d duplicates, %d errors",
			result.ImportedRows, result.DuplicateRows, result.ErrorRows)
	}
	return utils.SuccessResponse(c, message, result)
}

// ImportAsync queues the import for the worker and returns the job to poll.
func (h *MasterHandler) ImportAsync(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.parseRows(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}

	status, err := h.jobs.Submit(c.UserContext(), models.ImportJob{
		MasterType: t.Type,
		GroupID:    group.ID,
		Rows:       rows,
		Actor:      middleware.Actor(c),
	})
	if err != nil {
		return respondError(c, "Failed to queue import", err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SuccessResponse(c, "Import queued", status)
}

// Export writes the rows as a workbook colored by their validation status.
func (h *MasterHandler) Export(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	rows, err := h.parseRows(c)
	if err != nil {
		return respondError(c, "Invalid request body", err)
	}

	var result *models.ValidationResult
	validation, work, err := h.importer.Validate(c.UserContext(), t, *group, rows)
	if err != nil {
		utils.GetLogger().WithError(err).WithField("master_type", t.Type).Warn("Exporting without validation colors")
		work = rows
	} else {
		result = &validation
	}

	buf, err := h.excel.Export(work, t, *group, result)
	if err != nil {
		return respondError(c, "Failed to export rows", err)
	}

	return sendWorkbook(c, group.ExpectedFilename(), buf.Bytes())
}

// Template returns an empty workbook with the group's headers and expected filename.
func (h *MasterHandler) Template(c *fiber.Ctx) error {
	t, group, err := h.resolve(c)
	if err != nil {
		return respondError(c, "Invalid master group", err)
	}

	buf, err := h.excel.Template(t, *group)
	if err != nil {
		return respondError(c, "Failed to generate template", err)
	}

	return sendWorkbook(c, group.ExpectedFilename(), buf.Bytes())
}

func (h *MasterHandler) DeleteRow(c *fiber.Ctx) error {
	t, err := rules.Lookup(c.Params("type"))
	if err != nil {
		return respondError(c, "Unknown master type", err)
	}

	id, err := paramInt64(c, "id")
	if err != nil {
		return respondError(c, "Invalid row ID", err)
	}

	if err := h.eraser.DeleteRow(c.UserContext(), t, id, middleware.Actor(c)); err != nil {
		return respondError(c, "Failed to delete row", err)
	}

	return utils.SuccessResponse(c, "Row deleted successfully", nil)
}

// resolve reads the master type and group of the route.
func (h *MasterHandler) resolve(c *fiber.Ctx) (*rules.Table, *models.Group, error) {
	t, err := rules.Lookup(c.Params("type"))
	if err != nil {
		return nil, nil, err
	}

	groupID, err := paramInt64(c, "group_id")
	if err != nil {
		return nil, nil, err
	}

	group, err := h.loader.Group(c.UserContext(), t, groupID)
	if err != nil {
		return nil, nil, err
	}
	return t, group, nil
}

func (h *MasterHandler) parseRows(c *fiber.Ctx) ([]models.Row, error) {
	var req RowsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := h.checkRowLimit(req.Rows); err != nil {
		return nil, err
	}
	return req.Rows, nil
}

func (h *MasterHandler) checkRowLimit(rows []models.Row) error {
	if h.cfg.ImportMaxRows > 0 && len(rows) > h.cfg.ImportMaxRows {
		return fmt.Errorf("%w: %d rows exceed the maximum of %d", errBadRequest, len(rows), h.cfg.ImportMaxRows)
	}
	return nil
}

func (h *MasterHandler) validated(c *fiber.Ctx, t *rules.Table, group *models.Group, rows []models.Row, message string) error {
	result, work, err := h.importer.Validate(c.UserContext(), t, *group, rows)
	if err != nil {
		return respondError(c, "Failed to load reference data", err)
	}

	return utils.SuccessResponse(c, message, fiber.Map{
		"group":      group,
		"rows":       work,
		"validation": result,
		"messages":   service.IssueMessages(result),
	})
}

func sendWorkbook(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
