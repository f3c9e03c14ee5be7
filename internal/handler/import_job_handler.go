package handler

import (
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ImportJobHandler struct {
	jobs *service.ImportJobService
}

func NewImportJobHandler(jobs *service.ImportJobService) *ImportJobHandler {
	return &ImportJobHandler{jobs: jobs}
}

// Status returns the state of an asynchronous import.
func (h *ImportJobHandler) Status(c *fiber.Ctx) error {
	status, err := h.jobs.Status(c.UserContext(), c.Params("job_id"))
	if err != nil {
		return respondError(c, "Import job not found", err)
	}

	return utils.SuccessResponse(c, "Import job retrieved successfully", status)
}
