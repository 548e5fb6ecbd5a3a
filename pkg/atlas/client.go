// Package atlas is a small client for the parts of the MongoDB Atlas Admin API v2 used to run
// hackathon clusters: projects, free tier clusters, database users and IP access lists. It also
// holds the naming, password and connection string helpers the Atlas resources need.
//
// The client doesn't implement any business logic. Non-2xx responses are returned as [*Error]
// so callers can decide which statuses are expected, e.g. a 404 while probing for an existing
// resource.
package atlas

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dhis2-sre/im-atlas/pkg/metrics"
	"github.com/mongodb-forks/digest"
)

const (
	DefaultBaseURL = "https://cloud.mongodb.com/api/atlas/v2"

	// mediaType pins the API version all request and response bodies are written against.
	mediaType = "application/vnd.atlas.2023-02-01+json"

	defaultTimeout = 60 * time.Second
)

type ClientConfig struct {
	PublicKey  string
	PrivateKey string
	OrgID      string
	BaseURL    string
}

// Client is safe for concurrent use. Create it once and share it.
type Client struct {
	baseURL    string
	orgID      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the digest authenticated HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(config ClientConfig, options ...Option) (*Client, error) {
	if config.OrgID == "" {
		return nil, errors.New("atlas organization id is required")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cmp.Or(config.BaseURL, DefaultBaseURL), "/"),
		orgID:   config.OrgID,
	}
	for _, option := range options {
		option(c)
	}

	if c.httpClient == nil {
		if config.PublicKey == "" || config.PrivateKey == "" {
			return nil, errors.New("atlas public and private key are required")
		}

		httpClient, err := digest.NewTransport(config.PublicKey, config.PrivateKey).Client()
		if err != nil {
			return nil, fmt.Errorf("failed to create digest transport: %w", err)
		}
		httpClient.Timeout = defaultTimeout
		c.httpClient = httpClient
	}

	return c, nil
}

// request sends a request to the Atlas Admin API and decodes the response body into out unless
// out is nil or the response has no content.
func (c *Client) request(ctx context.Context, operation, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("atlas request failed: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("Content-Type", mediaType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAtlasCall(operation, 0, time.Since(start))
		return fmt.Errorf("atlas request failed: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveAtlasCall(operation, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("atlas request failed: %s %s: failed to read response body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

// page is the envelope of list endpoints.
type page[T any] struct {
	Results    []T `json:"results"`
	TotalCount int `json:"totalCount"`
}

// listQuery requests a single large page. Hackathon projects carry a handful of users and
// access list entries so paging beyond the first page isn't needed.
const listQuery = "?itemsPerPage=500"
