package pipeline

import (
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/yelpcamp-go/apperror"
)

// GenericMessage is all a production client learns about a server error.
const GenericMessage = "Oh No, Something Went Wrong!"

// ErrorHandler turns a failed pipeline into its single error response.
type ErrorHandler struct {
	development bool
	logger      *slog.Logger
}

// NewErrorHandler returns a handler. In development mode responses carry the
// full error chain (and stack, for panics) in the detail field.
func NewErrorHandler(development bool, logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{development: development, logger: logger}
}

// Handle maps err to a status code and display message and logs it.
// Errors that are not *apperror.AppError are internal errors.
func (h *ErrorHandler) Handle(c *Context, err error) Response {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError(GenericMessage, err)
	}

	body := appErr.ToResponse()
	if appErr.IsServerError() && !h.development {
		body.Error = GenericMessage
	}
	if h.development {
		body.Detail = appErr.Detail()
	}

	r := c.Request
	attrs := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", body.Status,
		"type", appErr.Type.String(),
		"error", appErr.Error(),
	}
	if appErr.IsServerError() {
		h.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		h.logger.InfoContext(r.Context(), "request rejected", attrs...)
	}

	return &JSON{Status: body.Status, Body: body}
}
