package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

const maxResponseBytes = 32 << 20

var ErrBadBaseURL = errors.New("backend base url must be absolute http(s)")

// FetchError is a failed call to the monitoring backend: a transport
// failure (StatusCode 0) or a non-2xx response.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client reads /health and /api/history from the monitoring backend.
// It implements repository.HistoryRepository.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient builds a client; a zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrBadBaseURL
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}, nil
}

// FetchHistory issues GET /api/history with one sites param per site.
func (c *Client) FetchHistory(ctx context.Context, query valueobject.HistoryQuery) (*entity.HistorySnapshot, error) {
	params := url.Values{}
	for _, site := range query.Sites() {
		params.Add("sites", site)
	}
	params.Set("start_time", query.StartParam())
	params.Set("end_time", query.EndParam())

	var raw map[string]json.RawMessage
	if err := c.getJSON(ctx, "history", "/api/history", params, &raw); err != nil {
		return nil, err
	}

	byName := make(map[string]entity.SiteHistory, len(raw))
	for name, body := range raw {
		site, report, err := entity.DecodeSiteHistory(body)
		if err != nil {
			c.logger.Debug("Skipping malformed site history", "site", name, "error", err)
			continue
		}
		if !report.Clean() {
			c.logger.Debug("Skipped malformed history entries",
				"site", name,
				"segments", report.SkippedSegments,
				"incidents", report.SkippedIncidents,
				"nullified", report.NullifiedFields,
			)
		}
		byName[name] = site
	}

	return entity.NewHistorySnapshot(byName, query.Sites()), nil
}

// FetchHealth issues GET /health and returns sites sorted by name.
func (c *Client) FetchHealth(ctx context.Context) ([]entity.SiteHealth, error) {
	var raw map[string]json.RawMessage
	if err := c.getJSON(ctx, "health", "/health", nil, &raw); err != nil {
		return nil, err
	}

	health := make([]entity.SiteHealth, 0, len(raw))
	for name, body := range raw {
		var site entity.SiteHealth
		if err := json.Unmarshal(body, &site); err != nil {
			c.logger.Debug("Skipping malformed site health", "site", name, "error", err)
			continue
		}
		site.Name = name
		health = append(health, site)
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, dest interface{}) error {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request done", "op", op, "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dest); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
