package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/hidapi/internal/app/features/health"
	"github.com/dalemusser/hidapi/internal/testutil"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

type fakeOps struct {
	n    int
	last time.Time
}

func (o fakeOps) Len() int               { return o.n }
func (o fakeOps) LastRefresh() time.Time { return o.last }

type response struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Redis      string `json:"redis"`
	Message    string `json:"message"`
	Operations *struct {
		Count       int        `json:"count"`
		LastRefresh *time.Time `json:"last_refresh"`
	} `json:"operations"`
}

func serve(t *testing.T, h *health.Handler) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), nil, nil, zap.NewNop())

	code, resp := serve(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.Empty(t, resp.Redis)
	assert.Nil(t, resp.Operations)
}

func TestServe_AllBackends(t *testing.T) {
	_, rdb := newRedis(t)
	refreshed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := health.NewHandler(fakePinger{}, rdb, fakeOps{n: 42, last: refreshed}, zap.NewNop())

	code, resp := serve(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "connected", resp.Redis)
	require.NotNil(t, resp.Operations)
	assert.Equal(t, 42, resp.Operations.Count)
	require.NotNil(t, resp.Operations.LastRefresh)
	assert.True(t, resp.Operations.LastRefresh.Equal(refreshed))
}

func TestServe_NeverRefreshedOmitsTimestamp(t *testing.T) {
	h := health.NewHandler(fakePinger{}, nil, fakeOps{}, zap.NewNop())

	code, resp := serve(t, h)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Operations)
	assert.Nil(t, resp.Operations.LastRefresh)
}

func TestServe_MongoDown(t *testing.T) {
	h := health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, nil, nil, zap.NewNop())

	code, resp := serve(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "disconnected", resp.Database)
	assert.Equal(t, "Database unavailable", resp.Message)
}

func TestServe_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()
	h := health.NewHandler(fakePinger{}, rdb, nil, zap.NewNop())

	code, resp := serve(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "disconnected", resp.Redis)
	assert.Equal(t, "Redis unavailable", resp.Message)
}
