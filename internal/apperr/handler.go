package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlobalErrorHandler maps the error taxonomy to HTTP responses.
// Caller faults (validation, not found) become 4xx; sampler, storage and
// external failures become 5xx carrying the failure message.
func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Message, "title": "validation error"})
			return
		}

		var nf *NotFoundError
		if errors.As(err, &nf) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": nf.Error()})
			return
		}

		var nc *NoCandidatesError
		if errors.As(err, &nc) {
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": nc.Message, "title": "no candidates"})
			return
		}

		var id *InsufficientDiversityError
		if errors.As(err, &id) {
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": id.Message, "title": "insufficient diversity"})
			return
		}

		var ese *ExternalServiceError
		if errors.As(err, &ese) {
			slog.Error("External service failure", "service", ese.Service, "error", err)
			_ = c.JSON(http.StatusBadGateway, map[string]string{"error": ese.Error()})
			return
		}

		var sve *SchemaViolationError
		if errors.As(err, &sve) {
			slog.Error("Generative model schema violation", "error", err)
			_ = c.JSON(http.StatusBadGateway, map[string]string{"error": sve.Error()})
			return
		}

		var se *StorageError
		if errors.As(err, &se) {
			slog.Error("Storage failure", "op", se.Op, "error", err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": se.Error()})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
