package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/mnuddindev/winoreat/pkg/logger"
)

// StatusMap maps error kinds to the HTTP status an endpoint answers with.
type StatusMap map[ErrorKind]int

// DefaultStatus is the kind to status mapping shared by most endpoints.
var DefaultStatus = StatusMap{
	KindBadRequest:       fiber.StatusUnprocessableEntity,
	KindAlreadyExists:    fiber.StatusUnprocessableEntity,
	KindForbidden:        fiber.StatusUnauthorized,
	KindNotFound:         fiber.StatusNotFound,
	KindCategoryNotFound: fiber.StatusNotFound,
	KindInternal:         fiber.StatusInternalServerError,
}

// Status returns the status mapped for the kind of err, 500 when unmapped.
func (m StatusMap) Status(err error) int {
	if code, ok := m[KindOf(err)]; ok {
		return code
	}
	return fiber.StatusInternalServerError
}

// ResponseBuilder builds a response with a fluent interface.
type ResponseBuilder struct {
	Ctx    context.Context
	C      *fiber.Ctx
	Status int
	Data   interface{}
	Err    error
}

// Success starts a success response, 200 unless overridden.
func Success(c *fiber.Ctx) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:    c.UserContext(),
		C:      c,
		Status: fiber.StatusOK,
	}
}

// Error starts an error response whose status follows DefaultStatus.
func Error(c *fiber.Ctx, err error) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:    c.UserContext(),
		C:      c,
		Status: DefaultStatus.Status(err),
		Err:    err,
	}
}

// WithStatus overrides the response status.
func (b *ResponseBuilder) WithStatus(status int) *ResponseBuilder {
	b.Status = status
	return b
}

// WithStatusMap picks the status for the error from an endpoint-specific mapping.
func (b *ResponseBuilder) WithStatusMap(m StatusMap) *ResponseBuilder {
	if b.Err != nil {
		b.Status = m.Status(b.Err)
	}
	return b
}

// WithData sets the response body.
func (b *ResponseBuilder) WithData(data interface{}) *ResponseBuilder {
	b.Data = data
	return b
}

// Send writes the response and logs it.
func (b *ResponseBuilder) Send() error {
	if log, ok := b.C.Locals("logger").(*logger.Logger); ok {
		meta := map[string]string{
			"status":  fmt.Sprintf("%d", b.Status),
			"path":    fiberutils.CopyString(b.C.Path()),
			"method":  fiberutils.CopyString(b.C.Method()),
			"latency": time.Since(b.C.Context().Time()).String(),
		}
		switch {
		case b.Err == nil:
			log.Info(b.Ctx).WithMeta(meta).Logs("Response sent")
		case b.Status >= fiber.StatusInternalServerError:
			log.Error(b.Ctx).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s", b.Err.Error()))
		default:
			log.Warn(b.Ctx).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s", b.Err.Error()))
		}
	}

	if b.Err != nil {
		msg := MessageOf(b.Err)
		if KindOf(b.Err) == KindInternal {
			msg = ErrInternalServerError.Message
		}
		return b.C.Status(b.Status).JSON(fiber.Map{"errors": []string{msg}})
	}
	if b.Data == nil {
		return b.C.SendStatus(b.Status)
	}
	return b.C.Status(b.Status).JSON(b.Data)
}

// SendError is a convenience function to send an error response directly.
func SendError(c *fiber.Ctx, err error) error {
	return Error(c, err).Send()
}

// SendSuccess is a convenience function to send a success response directly.
func SendSuccess(c *fiber.Ctx, data interface{}) error {
	return Success(c).WithData(data).Send()
}

// SendValidation answers 422 with the per-field validation errors.
func SendValidation(c *fiber.Ctx, verr *ErrorResponse) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(verr)
}
