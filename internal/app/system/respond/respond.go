// Package respond writes JSON API responses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// maxBody bounds request bodies read by Decode.
const maxBody = 1 << 20

// Decode reads a JSON request body into v. Malformed bodies return an
// apperr.ErrBadRequest.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error maps err onto a status and stable code. Server-side failures are
// logged and their detail withheld from the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.Status(err)
	body := errorBody{Error: apperr.Code(err)}
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
	} else if !errors.Is(err, apperr.ErrForbidden) {
		body.Message = err.Error()
	}
	JSON(w, status, body)
}
