package profiles_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/hidapi/internal/app/features/profiles"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestHandleSave(t *testing.T) {
	f := newFixture()
	mgr := f.person("mgr", []string{"manager:hti"}, "hti")
	target := f.person("ana", nil, "hti")

	r := chi.NewRouter()
	r.Mount("/v0/profiles", profiles.Routes(profiles.NewHandler(f.saver, zap.NewNop())))

	tests := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"grant", target.ID.Hex(), `{"roles":["editor:hti"]}`, http.StatusOK},
		{"bad id", "zzz", `{}`, http.StatusBadRequest},
		{"bad body", target.ID.Hex(), `[`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v0/profiles/"+tt.id, strings.NewReader(tt.body))
			req = req.WithContext(auth.WithActor(req.Context(), actorFor(mgr)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if got := f.profiles[target.ID].Roles; len(got) != 1 || got[0] != "editor:hti" {
		t.Errorf("roles after grant: got %v", got)
	}
}

func TestHandleSave_NoActor(t *testing.T) {
	h := profiles.NewHandler(newFixture().saver, zap.NewNop())
	rec := httptest.NewRecorder()
	h.HandleSave(rec, httptest.NewRequest(http.MethodPost, "/v0/profiles/x", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
