package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sessionvault/internal/http/middleware"
	"sessionvault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "FILE_REQUIRED", "NOT_FOUND", "INTERNAL_ERROR")
// - detail: human-readable message
func writeError(c *fiber.Ctx, status int, code, detail string) error {
	return c.Status(status).JSON(errorPayload{
		Detail:    detail,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// writeServiceError translates a service failure into a response.
// prefix names the failed operation for 500 details, e.g. "Upload failed".
func writeServiceError(c *fiber.Ctx, prefix string, err error) error {
	switch service.KindOf(err) {
	case service.KindInvalid:
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", unwrapDetail(err))
	case service.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Session file not found")
	case service.KindUnavailable:
		return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Blob storage not connected")
	case service.KindInconsistent:
		return writeError(c, fiber.StatusInternalServerError, "INCONSISTENT_STATE", prefix+": "+err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", prefix+": "+err.Error())
	}
}

func unwrapDetail(err error) string {
	var se *service.Error
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	return err.Error()
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
