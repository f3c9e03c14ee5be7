package handler

import (
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var errBadRequest = errors.New("invalid request")

// respondError maps a service error onto its HTTP status and writes the error envelope.
func respondError(c *fiber.Ctx, message string, err error) error {
	var failed *models.ValidationFailedError
	if errors.As(err, &failed) {
		return utils.ErrorResponseWithData(c, fiber.StatusUnprocessableEntity, failed.Error(), fiber.Map{
			"validation": failed.Result,
			"messages":   service.IssueMessages(*failed.Result),
		})
	}

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, models.ErrFilenameMismatch),
		errors.Is(err, models.ErrParseFailure),
		errors.Is(err, models.ErrReasonRequired):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, message, err)
	case errors.Is(err, models.ErrAuthenticationFailed):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, message, err)
	case errors.Is(err, models.ErrUnknownMasterType),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrRowNotFound),
		errors.Is(err, models.ErrFlowNotFound),
		errors.Is(err, models.ErrJobNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrDuplicateRow):
		return utils.ErrorResponse(c, fiber.StatusConflict, message, err)
	case errors.Is(err, models.ErrQueueUnavailable):
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, message, err)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

func paramInt64(c *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, c.Params(name))
	}
	return v, nil
}
