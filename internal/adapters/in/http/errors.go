package http

import (
	"errors"
	"net/http"

	"buyback/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request. Code is stable and
// meant for programs; Message is for people.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse maps an error onto an HTTP status and body.
func errorResponse(err error) (int, ErrorResponse) {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, ErrorResponse{Code: "http_error", Message: msg}
	case errs.IsValidation(err):
		return http.StatusBadRequest, ErrorResponse{Code: "validation_error", Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()}
	case errors.Is(err, errs.ErrNoTrackingNumber):
		return http.StatusBadRequest, ErrorResponse{Code: "no_tracking_number", Message: err.Error()}
	case errors.Is(err, errs.ErrPromoExhausted):
		return http.StatusConflict, ErrorResponse{Code: "promo_exhausted", Message: err.Error()}
	case errors.Is(err, errs.ErrPromoIneligible):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "promo_ineligible", Message: err.Error()}
	case errors.Is(err, errs.ErrStateConflict):
		return http.StatusConflict, ErrorResponse{Code: "state_conflict", Message: err.Error()}
	case errors.Is(err, errs.ErrVersionConflict):
		return http.StatusConflict, ErrorResponse{Code: "version_conflict", Message: err.Error()}
	case errors.Is(err, errs.ErrCredentialsMissing):
		return http.StatusInternalServerError, ErrorResponse{Code: "credentials_missing", Message: err.Error()}
	case errors.Is(err, errs.ErrProviderTransient):
		return http.StatusBadGateway, ErrorResponse{Code: "provider_unavailable", Message: err.Error()}
	case errors.Is(err, errs.ErrProviderFailed):
		return http.StatusBadGateway, ErrorResponse{Code: "provider_failed", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "internal error"}
	}
}

// errorHandler replaces echo's default so handlers can simply return errors.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("write error response", zap.Error(err))
	}
}
