package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/observability"
	apperrors "github.com/sanskruthi/fest-service/pkg/util"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// RegisterMiddlewares installs request logging, the per-request deadline and
// the error envelope, in that order.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(withDeadline(timeout))
	}
	app.Use(renderErrors(logger, metrics))
}

func withDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// renderErrors converts handler errors and panics into the JSON error
// envelope and counts them per route.
func renderErrors(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("path", c.Path()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			de := toDomainError(err)
			metrics.RecordError(c.Route().Path, c.Method(), de.Code)
			if de.HTTPStatus >= http.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			err = writeError(c, de, true)
		}()
		return c.Next()
	}
}

// ErrorHandler renders errors that escape the middleware chain, such as
// body-limit rejections raised by fiber itself.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, toDomainError(err), false)
}

func writeError(c *fiber.Ctx, de *apperrors.DomainError, withDetails bool) error {
	body := errorBody{Code: de.Code, Message: de.Message}
	if withDetails {
		body.Details = de.Details
	}
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": body})
}

// toDomainError also understands fiber's own errors (404 route, 413 body) and
// requests that ran past their deadline.
func toDomainError(err error) *apperrors.DomainError {
	var (
		fiberErr  *fiber.Error
		domainErr *apperrors.DomainError
	)
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.As(err, &fiberErr):
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_"))
		if code == "" {
			code = "HTTP_ERROR"
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewDomainError("REQUEST_TIMEOUT", "request timed out", http.StatusGatewayTimeout, nil)
	}
	return apperrors.ToDomainError(err)
}
