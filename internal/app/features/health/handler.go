// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// OperationsStatus reports the state of the operations cache.
type OperationsStatus interface {
	Len() int
	LastRefresh() time.Time
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Mongo      Pinger
	Redis      *redis.Client // optional
	Operations OperationsStatus
	Log        *zap.Logger
}

// NewHandler constructs a health Handler. rdb and ops may be nil.
func NewHandler(mongo Pinger, rdb *redis.Client, ops OperationsStatus, logger *zap.Logger) *Handler {
	return &Handler{
		Mongo:      mongo,
		Redis:      rdb,
		Operations: ops,
		Log:        logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status     string           `json:"status"`
	Database   string           `json:"database"`
	Redis      string           `json:"redis,omitempty"`
	Operations *operationsState `json:"operations,omitempty"`
	Message    string           `json:"message,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type operationsState struct {
	Count       int        `json:"count"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "redis":"connected", "operations":{"count":312} }
//
// On a backend failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// The operations cache is informational and never fails the check.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.Redis != nil {
		resp.Redis = "connected"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			h.Log.Error("health-check: redis ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Redis = "disconnected"
			resp.Message = "Redis unavailable"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	if h.Operations != nil {
		st := &operationsState{Count: h.Operations.Len()}
		if t := h.Operations.LastRefresh(); !t.IsZero() {
			st.LastRefresh = &t
		}
		resp.Operations = st
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
