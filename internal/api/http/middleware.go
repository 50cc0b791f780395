package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/crmkit/crm-authz/internal/observability"
	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

// RegisterMiddlewares attaches the request id, request logging, deadline and
// error rendering. The request logger wraps the renderer so it sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New())
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestDeadline(timeout))
	}
	app.Use(renderErrors(logger.Named("http"), metrics))
}

func requestDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// renderErrors turns handler errors and panics into the JSON error envelope.
func renderErrors(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			logFailure(logger, c, domainErr)
			writeError(c, domainErr)
			err = nil
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus == http.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, bearerChallenge(domainErr.Code))
	}
	_ = c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// bearerChallenge tells clients whether to sign in again or just send a token.
func bearerChallenge(code string) string {
	if code == apperrors.CodeInvalidContext {
		return `Bearer error="invalid_token", error_description="session is not valid"`
	}
	return "Bearer"
}

func logFailure(logger *zap.Logger, c *fiber.Ctx, domainErr *apperrors.DomainError) {
	fields := []zap.Field{
		zap.String("code", domainErr.Code),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.Error(domainErr),
	}
	switch {
	case domainErr.HTTPStatus >= http.StatusInternalServerError:
		logger.Error("request failed", fields...)
	case domainErr.HTTPStatus == http.StatusUnauthorized, domainErr.HTTPStatus == http.StatusTooManyRequests:
		logger.Warn("request rejected", fields...)
	default:
		logger.Debug("request denied", fields...)
	}
}
