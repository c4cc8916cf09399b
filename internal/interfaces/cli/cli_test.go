package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliHistoryBody = `{
  "api": {
    "timeline_data": [[1000, 2000, 1, null], [2000, 3000, 3, "timeout"]],
    "overall_stats": {"availability": 99.9, "avg_response_time": 0.5},
    "response_times": {"timestamps_ms": [1714557600000, 1714557660000], "times": [0.4, 0.6]},
    "incidents": [
      {"status_key": "down", "start_ts": 2500, "resolved": false, "reason": "timeout"},
      {"status_key": "slow", "start_ts": 1200, "end_ts": 1400, "resolved": true}
    ],
    "sla_stats": {"today": 99.5, "week": 0, "month": null}
  },
  "web": {
    "timeline_data": [[1000, 3000, 1, null]],
    "overall_stats": {"availability": 100},
    "response_times": {"timestamps_ms": [1714557660000], "times": [0.2]},
    "incidents": []
  }
}`

const cliHealthBody = `{
  "web": {"status": "ok", "response_time_seconds": 0.21, "total_checks": 42},
  "api": {"status": "down", "down_since": "2024-05-01 10:30:00"}
}`

func init() {
	color.NoColor = true
}

func newBackend(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/api/history":
			_, _ = w.Write([]byte(cliHistoryBody))
		case "/health":
			_, _ = w.Write([]byte(cliHealthBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func rangeArgs(backendURL string, extra ...string) []string {
	args := []string{"--backend", backendURL, "--start", "2024-05-01T10:00", "--end", "2024-05-01T11:00"}
	return append(args, extra...)
}

func TestSummaryCommand(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	out, err := run(t, append([]string{"summary"}, rangeArgs(backend.URL, "--sites", "api,web")...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "99.95% · 3 nines")
	assert.Contains(t, out, "Down: 1 · Slow: 0")
	assert.Contains(t, out, "99.50%")
}

func TestSummaryCommand_JSON(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	out, err := run(t, append([]string{"summary", "-o", "json"}, rangeArgs(backend.URL, "--sites", "api,web")...)...)
	require.NoError(t, err)

	var decoded struct {
		Summary struct {
			SiteCount       int     `json:"site_count"`
			AvgAvailability float64 `json:"avg_availability"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 2, decoded.Summary.SiteCount)
	assert.InDelta(t, 99.95, decoded.Summary.AvgAvailability, 1e-9)
}

func TestIncidentsCommand(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	out, err := run(t, append([]string{"incidents", "--status", "unresolved"}, rangeArgs(backend.URL, "--sites", "api")...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "Unresolved")
	assert.NotContains(t, out, "slow")

	out, err = run(t, append([]string{"incidents", "--type", "slow", "--status", "unresolved"}, rangeArgs(backend.URL, "--sites", "api")...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No unresolved · slow alerts for the current filter")

	_, err = run(t, append([]string{"incidents", "--status", "maybe"}, rangeArgs(backend.URL, "--sites", "api")...)...)
	assert.Error(t, err)
}

func TestSeriesCommand(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	out, err := run(t, append([]string{"series"}, rangeArgs(backend.URL, "--sites", "api,web")...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "0.400")
	assert.Contains(t, out, "0.200")
	assert.Contains(t, out, "2 points, minute granularity")
}

func TestStatusCommand(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	out, err := run(t, "status", "--backend", backend.URL)
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "api"), strings.Index(out, "web"), "cards are sorted by name")
	assert.Contains(t, out, "2024-05-01 10:30:00")
	assert.Contains(t, out, "0.21s")
	assert.Contains(t, out, "42")
}

func TestCommandErrors(t *testing.T) {
	failing := newBackend(t, http.StatusBadGateway)

	_, err := run(t, append([]string{"summary"}, rangeArgs(failing.URL, "--sites", "api")...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data load failed")

	_, err = run(t, "status", "--backend", failing.URL)
	assert.Error(t, err)

	ok := newBackend(t, http.StatusOK)
	_, err = run(t, append([]string{"summary"}, rangeArgs(ok.URL)...)...)
	assert.ErrorContains(t, err, "no sites selected")

	_, err = run(t, "summary", "--backend", ok.URL, "--start", "2024-05-01T10:00", "--sites", "api")
	assert.ErrorContains(t, err, "--start and --end")

	_, err = run(t, "summary", "--backend", ok.URL, "--sites", "api", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestCatalogSelection(t *testing.T) {
	backend := newBackend(t, http.StatusOK)

	catalog := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("sites:\n  - name: web\n    default: true\n  - name: api\n"), 0o600))

	out, err := run(t, append([]string{"summary", "-o", "json"}, rangeArgs(backend.URL, "--catalog", catalog)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"site_count": 1`)
}

func TestRangeParams(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	opts := &options{now: func() time.Time { return now }, last: 2 * time.Hour}

	start, end := opts.rangeParams()
	assert.Equal(t, "2024-05-01T10:00", start)
	assert.Equal(t, "2024-05-01T12:00", end)

	opts.start, opts.end = "a", "b"
	start, end = opts.rangeParams()
	assert.Equal(t, "a", start)
	assert.Equal(t, "b", end)
}
