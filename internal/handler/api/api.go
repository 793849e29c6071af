// Package api exposes the engine over JSON HTTP. Handlers translate wire
// requests into service calls and domain errors into status codes; they hold
// no business logic of their own.
package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rowanholt/vesta/internal/domain"
)

// Validator adapts go-playground/validator to echo's request validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return domain.Invalid("api.validate", err.Error())
	}
	return nil
}

// errorEnvelope is the uniform error body.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler maps domain error codes onto HTTP statuses. Internal errors
// are logged with their cause and surface only a generic message.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			_ = c.JSON(he.Code, errorEnvelope{Error: errorBody{Code: "http_error", Message: msg}})
			return
		}

		code := domain.ErrorCode(err)
		status := statusForCode(code)

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		_ = c.JSON(status, errorEnvelope{Error: errorBody{
			Code:    code,
			Message: domain.ErrorMessage(err),
		}})
	}
}

func statusForCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNPROCESSABLE:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
