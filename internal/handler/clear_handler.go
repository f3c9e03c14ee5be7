package handler

import (
	"errors"
	"masterdata-web/internal/middleware"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ClearHandler drives the confirm, captcha and credentials steps of clearing a group.
type ClearHandler struct {
	clearService *service.ClearService
}

func NewClearHandler(clearService *service.ClearService) *ClearHandler {
	return &ClearHandler{clearService: clearService}
}

type AnswerRequest struct {
	Yes           bool `json:"yes"`
	CaptchaAnswer int  `json:"captcha_answer"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Reason   string `json:"reason"`
}

func (h *ClearHandler) Start(c *fiber.Ctx) error {
	t, err := rules.Lookup(c.Params("type"))
	if err != nil {
		return respondError(c, "Unknown master type", err)
	}

	groupID, err := paramInt64(c, "group_id")
	if err != nil {
		return respondError(c, "Invalid group ID", err)
	}

	view, err := h.clearService.Start(c.UserContext(), t, groupID, middleware.Actor(c))
	if err != nil {
		return respondError(c, "Failed to start clear", err)
	}

	if view.NoData {
		return utils.SuccessResponse(c, "No data found", view)
	}
	return utils.SuccessResponse(c, "Confirm to continue", view)
}

func (h *ClearHandler) Answer(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	view, err := h.clearService.Answer(c.UserContext(), c.Params("flow_id"), middleware.Actor(c), req.Yes, req.CaptchaAnswer)
	if err != nil {
		return respondError(c, "Failed to record answer", err)
	}

	return utils.SuccessResponse(c, stepMessage(view), view)
}

// Credentials verifies the operator and clears the group. A failed login keeps the flow
// at the credentials step and is reported with the current view.
func (h *ClearHandler) Credentials(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	creds := models.Credentials{Username: req.Username, Password: req.Password}
	view, err := h.clearService.SubmitCredentials(c.UserContext(), c.Params("flow_id"), middleware.Actor(c), creds, req.Reason)
	if err != nil {
		if view.Step == models.StepCredentials {
			status := fiber.StatusUnauthorized
			if errors.Is(err, models.ErrReasonRequired) {
				status = fiber.StatusBadRequest
			}
			return utils.ErrorResponseWithData(c, status, err.Error(), view)
		}
		return respondError(c, "Failed to clear data", err)
	}

	return utils.SuccessResponse(c, stepMessage(view), view)
}

func (h *ClearHandler) Cancel(c *fiber.Ctx) error {
	view, err := h.clearService.Cancel(c.UserContext(), c.Params("flow_id"), middleware.Actor(c))
	if err != nil {
		return respondError(c, "Failed to cancel", err)
	}

	return utils.SuccessResponse(c, "Clear cancelled", view)
}

func stepMessage(view models.ClearView) string {
	switch view.Step {
	case models.StepConfirm1, models.StepConfirm2, models.StepConfirm3:
		if view.Message != "" {
			return view.Message
		}
		return "Confirm to continue"
	case models.StepCredentials:
		return "Enter credentials and a reason"
	case models.StepDone:
		return "Data cleared successfully"
	}
	return "Clear cancelled"
}
