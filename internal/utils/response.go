package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes a failure envelope. err is logged and its text exposed as the error field.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
		if status >= fiber.StatusInternalServerError {
			GetLogger().WithError(err).WithField("path", c.Path()).Error(message)
		}
	}
	return c.Status(status).JSON(resp)
}

// ErrorResponseWithData writes a failure envelope that also carries a payload, such as the
// validation result of a rejected import.
func ErrorResponseWithData(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
		Data:    data,
	})
}
