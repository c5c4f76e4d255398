package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/observability"
	apperrors "github.com/spec-kit/request-service/pkg/util"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorHandler maps errors to the uniform JSON body. Domain errors keep
// their code and status; fiber errors keep their status; everything else is
// a 500 with the cause logged but not echoed to the client.
func NewErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			if domainErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
					zap.String("code", domainErr.Code),
					zap.Error(err))
			}
			metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			return c.Status(domainErr.HTTPStatus).JSON(ErrorResponse{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Details: domainErr.Details,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			metrics.RecordError(c.Path(), c.Method(), http.StatusText(fiberErr.Code))
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
			})
		}

		logger.Error("unhandled error",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Error(err))
		metrics.RecordError(c.Path(), c.Method(), "INTERNAL_ERROR")
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}
