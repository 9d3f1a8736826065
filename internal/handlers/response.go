package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/apperrors"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Response is the envelope written when a handler has no explicit payload.
// Success statuses fill Message, every other status fills Error.
type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ActionRecorder counts social actions, e.g. metrics.Collector.
type ActionRecorder interface {
	RecordAction(action, result string)
}

// respond writes payload as-is when present, the envelope otherwise.
func respond(c echo.Context, status int, message string, payload interface{}) error {
	if payload != nil {
		return c.JSON(status, payload)
	}
	if status >= 200 && status <= 399 {
		return c.JSON(status, Response{Message: message})
	}
	return c.JSON(status, Response{Error: message})
}

// ErrorHandler converts handler errors into the response envelope. Server
// side failures are logged with their cause; clients only see the message.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var appErr *apperrors.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.HTTPStatus()
			message = appErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		}

		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = respond(c, status, message, nil)
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.InvalidInput("Invalid request payload.")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.InvalidInput(validators.ValidationMessage(err))
	}
	return nil
}

// formUpload reads the optional multipart file field. A request without the
// field yields nil.
func formUpload(c echo.Context, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.InvalidInput("Invalid file upload.")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid file upload.")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid file upload.")
	}
	return &services.Upload{Filename: fh.Filename, Data: data}, nil
}
