package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operationsJSON = `{"data":[
  {"id":90,"label":"Haiti","status":"active","country":{"iso3":"HTI","pcode":"HT"}},
  {"id":"91","label":"Chad","country":{"iso3":"TCD"}},
  {"id":92,"label":"Closed","status":"archived"}
]}`

func TestHTTPSource_ListOperations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(operationsJSON))
	}))
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{URL: srv.URL, IDPrefix: "hrinfo:"}, srv.Client())
	ops, err := src.ListOperations(context.Background())
	require.NoError(t, err)

	assert.Len(t, ops, 2)
	assert.Equal(t, models.Operation{ID: "hrinfo:90", Name: "Haiti", ISO3: "HTI", PCode: "HT"}, ops["hrinfo:90"])
	assert.Equal(t, "Chad", ops["hrinfo:91"].Name)
	assert.NotContains(t, ops, "hrinfo:92")
}

func TestHTTPSource_ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/operations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(operationsJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(HTTPConfig{
		URL:          srv.URL + "/operations",
		TokenURL:     srv.URL + "/token",
		ClientID:     "hid",
		ClientSecret: "secret",
	}, srv.Client())

	ops, err := src.ListOperations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Haiti", ops["90"].Name)
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(HTTPConfig{URL: srv.URL}, srv.Client()).ListOperations(context.Background())
	assert.Error(t, err)
}

type fakeSource struct {
	ops map[string]models.Operation
	err error
}

func (f *fakeSource) ListOperations(context.Context) (map[string]models.Operation, error) {
	return f.ops, f.err
}

func TestCache_RefreshAndLookup(t *testing.T) {
	src := &fakeSource{ops: map[string]models.Operation{
		"loc1": {ID: "loc1", Name: "Haiti"},
		"loc2": {ID: "loc2"},
	}}
	c := NewCache(src, time.Hour, nil)

	_, ok := c.LocationName("loc1")
	assert.False(t, ok, "empty before refresh")
	assert.True(t, c.LastRefresh().IsZero())

	n, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.LastRefresh().IsZero())

	name, ok := c.LocationName("loc1")
	assert.True(t, ok)
	assert.Equal(t, "Haiti", name)

	_, ok = c.LocationName("loc2")
	assert.False(t, ok, "nameless operations do not resolve")

	src.err = errors.New("down")
	_, err = c.Refresh(context.Background())
	assert.Error(t, err)
	_, ok = c.Operation("loc1")
	assert.True(t, ok, "failed refresh keeps entries")
}
