package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage bool
		wantLogged  bool
	}{
		{"bad request", apperr.BadRequest("name is required"), http.StatusBadRequest, true, false},
		{"not found", fmt.Errorf("contact: %w", apperr.ErrNotFound), http.StatusNotFound, true, false},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, false, false},
		{"storage", apperr.Storage("upsert contact", errors.New("socket closed")), http.StatusInternalServerError, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			rec := httptest.NewRecorder()
			Error(rec, zap.New(core), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != apperr.Code(tt.err) {
				t.Errorf("code: got %q, want %q", body.Error, apperr.Code(tt.err))
			}
			if (body.Message != "") != tt.wantMessage {
				t.Errorf("message presence: got %q", body.Message)
			}
			if (logs.Len() > 0) != tt.wantLogged {
				t.Errorf("logged: got %d entries", logs.Len())
			}
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "x"})
	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestDecode(t *testing.T) {
	var v map[string]any
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nameGiven":"Ana"}`))
	if err := Decode(httptest.NewRecorder(), r, &v); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v["nameGiven"] != "Ana" {
		t.Errorf("got %v", v)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nameGiven":`))
	if err := Decode(httptest.NewRecorder(), r, &v); !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}
