// Package directory resolves operation (location) ids to names and country
// codes from a remote directory API, and caches the result.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/hidapi/internal/domain/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Source lists every known operation keyed by id.
type Source interface {
	ListOperations(ctx context.Context) (map[string]models.Operation, error)
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	// URL returns the operations listing as JSON.
	URL string
	// IDPrefix is prepended to remote ids, e.g. "hrinfo:", so they match
	// the location ids used in role scopes.
	IDPrefix string

	// Client credentials. When TokenURL is empty requests are anonymous.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// HTTPSource reads operations from the directory API.
type HTTPSource struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPSource returns a source for cfg. base is the transport client used
// for token and API calls; nil means http.DefaultClient.
func NewHTTPSource(cfg HTTPConfig, base *http.Client) *HTTPSource {
	if base == nil {
		base = http.DefaultClient
	}
	client := base
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(ctx)
	}
	return &HTTPSource{cfg: cfg, client: client}
}

type operationsResponse struct {
	Data []struct {
		ID      json.RawMessage `json:"id"`
		Label   string          `json:"label"`
		Status  string          `json:"status"`
		Country struct {
			ISO3  string `json:"iso3"`
			PCode string `json:"pcode"`
		} `json:"country"`
	} `json:"data"`
}

// ListOperations fetches the full operation list. Inactive operations are
// skipped.
func (s *HTTPSource) ListOperations(ctx context.Context) (map[string]models.Operation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch operations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: fetch operations: unexpected status %d", resp.StatusCode)
	}

	var body operationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("directory: decode operations: %w", err)
	}

	out := make(map[string]models.Operation, len(body.Data))
	for _, d := range body.Data {
		if d.Status != "" && d.Status != "active" {
			continue
		}
		id := strings.Trim(string(d.ID), `"`)
		if id == "" || id == "null" {
			continue
		}
		id = s.cfg.IDPrefix + id
		out[id] = models.Operation{
			ID:    id,
			Name:  d.Label,
			ISO3:  d.Country.ISO3,
			PCode: d.Country.PCode,
		}
	}
	return out, nil
}
