package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/avencatt/storefront/internal/service/errs"
)

// JSON writes a JSON response body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// Error maps a service error to its HTTP status. Internal errors are replaced
// with a generic message so persistence and gateway details never leak.
func Error(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	JSON(w, status, map[string]string{"error": message})
}
