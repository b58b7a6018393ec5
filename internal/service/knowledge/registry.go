// Package knowledge looks up authoritative drug information in the
// public easy-drug registry.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"pillbuddy-backend/internal/models"
	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/observability/metrics"
)

// ErrNoMatch is returned when the registry has no record for the name.
// Callers that do not care why a lookup produced nothing may treat it
// like any other lookup error; the metrics keep the outcomes apart.
var ErrNoMatch = errors.New("no registry record for drug name")

// Config holds registry client configuration.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client queries the authoritative drug registry.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *metrics.Metrics
}

// NewClient creates a registry client with a bounded request timeout.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		metrics: metrics.DefaultMetrics,
	}
}

// registryEnvelope mirrors the registry's response wrapper.
type registryEnvelope struct {
	Body struct {
		TotalCount int                 `json:"totalCount"`
		Items      []models.DrugRecord `json:"items"`
	} `json:"body"`
}

// Lookup fetches the registry records for a drug name.
//
// A hit returns a non-empty record slice. A confirmed absence returns
// ErrNoMatch; transport, HTTP, and decode failures return wrapped errors.
func (c *Client) Lookup(ctx context.Context, name string) ([]models.DrugRecord, error) {
	logger := logging.WithProvider("knowledge", "registry")
	start := time.Now()

	params := url.Values{}
	params.Set("ServiceKey", c.apiKey)
	params.Set("itemName", name)
	params.Set("type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create registry request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.KnowledgeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RegistryLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.KnowledgeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var envelope registryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.metrics.KnowledgeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode registry response: %w", err)
	}

	if envelope.Body.TotalCount == 0 || len(envelope.Body.Items) == 0 {
		c.metrics.KnowledgeLookups.WithLabelValues("miss").Inc()
		logger.Debug().Str("drugName", name).Msg("No registry record")
		return nil, ErrNoMatch
	}

	c.metrics.KnowledgeLookups.WithLabelValues("hit").Inc()
	logger.Debug().
		Str("drugName", name).
		Int("records", len(envelope.Body.Items)).
		Msg("Registry lookup hit")
	return envelope.Body.Items, nil
}
