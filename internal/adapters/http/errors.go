package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/pkg/schema"
)

// APIError is a structured error response.
type APIError struct {
	Status    int      `json:"status"`
	Code      string   `json:"code"`    // bad_request, not_found, unprocessable, internal_error, ...
	Message   string   `json:"message"` // Human-readable message
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string, details ...string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string, details ...string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, details...)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errUnprocessable reports a well-formed request the geometry cannot serve,
// e.g. an origin too close to a pole.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "upstream_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// isDomainError reports whether err wraps one of the domain sentinels.
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrSingularProjection) ||
		errors.Is(err, domain.ErrNotFound)
}

// errFromDomain maps service errors onto HTTP statuses. Internal details are
// logged, never returned.
func errFromDomain(c *fiber.Ctx, err error) error {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return errBadRequest(c, "request does not match schema", verr.Details...)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "fan not found")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrSingularProjection):
		return errUnprocessable(c, err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}
