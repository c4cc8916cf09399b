package usecase

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error")
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func boolp(v bool) *bool     { return &v }
func strp(v string) *string  { return &v }
func intp(v int) *int        { return &v }

type mockHistory struct {
	mu        sync.Mutex
	snapshot  *entity.HistorySnapshot
	health    []entity.SiteHealth
	err       error
	healthErr error
	calls     []valueobject.HistoryQuery

	// optional per-first-site gates used to control completion order
	started chan string
	gates   map[string]chan struct{}
	results map[string]*entity.HistorySnapshot
}

func (m *mockHistory) FetchHistory(_ context.Context, query valueobject.HistoryQuery) (*entity.HistorySnapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	first := ""
	if sites := query.Sites(); len(sites) > 0 {
		first = sites[0]
	}
	gate := m.gates[first]
	result, hasResult := m.results[first]
	m.mu.Unlock()

	if m.started != nil {
		m.started <- first
	}
	if gate != nil {
		<-gate
	}
	if m.err != nil {
		return nil, m.err
	}
	if hasResult {
		return result, nil
	}
	return m.snapshot, nil
}

func (m *mockHistory) FetchHealth(context.Context) ([]entity.SiteHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return m.health, nil
}

func (m *mockHistory) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return port.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mockCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.data, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

func (c *mockCache) Close() error { return nil }

func (c *mockCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type publishedEvent struct {
	subject string
	event   port.Event
}

type mockEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *mockEvents) PublishEvent(_ context.Context, subject string, event port.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{subject: subject, event: event})
	return nil
}

func (m *mockEvents) Close() error { return nil }

func (m *mockEvents) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

type mockNotifier struct {
	mu         sync.Mutex
	walls      []*dto.StatusWallDTO
	alerts     []*dto.AlertDTO
	dashboards map[string][]*dto.DashboardViewDTO
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{dashboards: make(map[string][]*dto.DashboardViewDTO)}
}

func (m *mockNotifier) BroadcastStatusWall(wall *dto.StatusWallDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walls = append(m.walls, wall)
}

func (m *mockNotifier) BroadcastAlert(alert *dto.AlertDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
}

func (m *mockNotifier) SendDashboard(sessionID string, view *dto.DashboardViewDTO) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboards[sessionID] = append(m.dashboards[sessionID], view)
}

func (m *mockNotifier) ClientCount() int { return 0 }

type mockMetrics struct {
	mu      sync.Mutex
	metrics []*entity.Metric
}

func (m *mockMetrics) PublishBatch(_ context.Context, metrics []*entity.Metric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, metrics...)
	return nil
}

func (m *mockMetrics) Flush(context.Context) error { return nil }

func (m *mockMetrics) byName() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.metrics))
	for _, metric := range m.metrics {
		out[metric.Name()] = metric.Value().Raw()
	}
	return out
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockRecorder) RecordFetch(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outcomes...)
}

type mockArchive struct {
	mu        sync.Mutex
	saved     []entity.Incident
	bySite    map[string][]entity.Incident
	err       error
	lastLimit int
}

func (m *mockArchive) SaveBatch(_ context.Context, incidents []entity.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, incidents...)
	return nil
}

func (m *mockArchive) FindBySite(_ context.Context, siteName string, limit int) ([]entity.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.bySite[siteName], nil
}

type putCall struct {
	key         string
	contentType string
	body        []byte
}

type mockReportStorage struct {
	calls           []putCall
	err             error
	objectsByPrefix map[string][]port.ReportObject
	lastPrefix      string
	lastLimit       int
}

func (m *mockReportStorage) PutObject(_ context.Context, key, contentType string, body []byte) (string, error) {
	m.calls = append(m.calls, putCall{key: key, contentType: contentType, body: body})
	if m.err != nil {
		return "", m.err
	}
	return "https://example.com/" + key, nil
}

func (m *mockReportStorage) ListObjects(_ context.Context, prefix string, limit int) ([]port.ReportObject, error) {
	m.lastPrefix = prefix
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.objectsByPrefix[prefix], nil
}

func (m *mockReportStorage) GetObjectURL(_ context.Context, key string) (string, error) {
	return "https://signed.example.com/" + key, nil
}

type mockReportIndex struct {
	records   []port.ReportMetadata
	page      port.ReportListPage
	err       error
	lastQuery port.ReportListQuery
}

func (m *mockReportIndex) Put(_ context.Context, record port.ReportMetadata) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockReportIndex) ListByDashboard(_ context.Context, query port.ReportListQuery) (port.ReportListPage, error) {
	m.lastQuery = query
	if m.err != nil {
		return port.ReportListPage{}, m.err
	}
	return m.page, nil
}
