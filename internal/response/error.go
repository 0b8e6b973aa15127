package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/GregMSThompson/stocks-snapshot/internal/errs"
	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeError(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", body.Code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.AlreadyExistsError:
		log.Warn("resource already exists", "error", e.Message)
		h.WriteError(w, r, http.StatusConflict, "already_exists", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", e.Message)

	case *errs.ConfigError:
		log.Warn("invalid widget config", "field", e.Field, "error", e.Message)
		h.writeError(w, r, http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_config",
			Message: e.Message,
			Field:   e.Field,
		})

	case *errs.MissingCredentialError:
		log.Warn("missing market api credential", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "missing_credential", e.Message)

	case *errs.TransportError:
		log.Warn("market api transport error",
			"status_code", e.StatusCode,
			"error", errs.Describe(e))
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.InvalidPayloadError:
		log.Warn("market api payload error",
			"field", e.Field,
			"detail", e.Detail)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", e.Message)

	case *errs.DatabaseError:
		log.Error("database error",
			"operation", e.Operation,
			"error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case *errs.EncryptionError:
		log.Error("encryption error", "error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
