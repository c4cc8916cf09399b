package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/uptime-dashboard/internal/application/session"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

func quietLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
})

func TestAuth(t *testing.T) {
	rejected := 0
	handler := Auth(AuthConfig{Enabled: true, BearerToken: "secret"}, quietLogger(), func() { rejected++ })(okHandler)

	tests := []struct {
		name   string
		mutate func(r *http.Request)
		want   int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer secret") }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "secret"}) }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=secret" }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			tt.mutate(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, 2, rejected)

	open := Auth(AuthConfig{Enabled: false}, quietLogger(), nil)(okHandler)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, TokenMatches("x", ""), "empty configured token never matches")
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	dropped := 0
	handler := RateLimit(limiter, func() { dropped++ })(okHandler)

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 1, dropped)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("X-Forwarded-For", "192.168.1.5, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(10 * time.Minute)
	limiter.Allow("b")

	assert.Equal(t, 1, limiter.Cleanup())
	assert.Len(t, limiter.visitors, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	assert.Equal(t, "127.0.0.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "8.8.8.8")
	assert.Equal(t, "8.8.8.8", ClientIP(req))
}

func TestSession(t *testing.T) {
	store := session.NewStore(time.Hour)
	var seen *session.DashboardSession
	handler := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	id := seen.ID()
	assert.Equal(t, id, rec.Header().Get(SessionHeader))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, id, rec.Result().Cookies()[0].Value)

	byHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	byHeader.Header.Set(SessionHeader, id)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, byHeader)
	assert.Equal(t, id, seen.ID())
	assert.Empty(t, rec.Result().Cookies(), "known session does not reset the cookie")

	byCookie := httptest.NewRequest(http.MethodGet, "/", nil)
	byCookie.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	handler.ServeHTTP(httptest.NewRecorder(), byCookie)
	assert.Equal(t, id, seen.ID())

	unknown := httptest.NewRequest(http.MethodGet, "/", nil)
	unknown.Header.Set(SessionHeader, "made-up")
	handler.ServeHTTP(httptest.NewRecorder(), unknown)
	assert.NotEqual(t, "made-up", seen.ID())
	assert.Equal(t, 2, store.Len())
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, fromCtx)
	assert.Equal(t, fromCtx, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", fromCtx)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestCompression(t *testing.T) {
	handler := Compression(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	reader, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	plain := httptest.NewRecorder()
	handler.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, plain.Header().Get("Content-Encoding"))

	ws := httptest.NewRequest(http.MethodGet, "/ws", nil)
	ws.Header.Set("Accept-Encoding", "gzip")
	ws.Header.Set("Upgrade", "websocket")
	wsRec := httptest.NewRecorder()
	handler.ServeHTTP(wsRec, ws)
	assert.Empty(t, wsRec.Header().Get("Content-Encoding"))
}

func TestLogger_PassesStatus(t *testing.T) {
	handler := Logger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusBadRequest, "bad")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
