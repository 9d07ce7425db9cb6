package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/consul-service/component"
	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/observability"
)

func newTestServer(t *testing.T, checker func(context.Context) []component.Health) (*Server, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsWithRegistry("test", reg, reg)

	s := New(Config{Host: "127.0.0.1", Port: 0}, logger.NewNop())
	s.ApplyMiddleware(metrics)
	s.RegisterDefaultEndpoints("test-svc", "1.0.0", checker, metrics.Handler())
	return s, metrics
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Port: 8000}
	cfg.ApplyDefaults()
	if cfg.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %q", cfg.Host)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Address() != "0.0.0.0:8000" {
		t.Errorf("unexpected address %q", cfg.Address())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ephemeral port", Config{Port: 0}, false},
		{"regular port", Config{Port: 8000}, false},
		{"port too large", Config{Port: 70000}, true},
		{"negative port", Config{Port: -1}, true},
		{"negative timeout", Config{Port: 80, ReadTimeout: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestHealthIsConstant(t *testing.T) {
	unhealthy := func(context.Context) []component.Health {
		return []component.Health{{Name: "discovery", Status: component.StatusUnhealthy}}
	}
	s, _ := newTestServer(t, unhealthy)

	rr := serve(s, "GET", "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"status":"healthy"}` {
		t.Errorf("unexpected body %s", body)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header")
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		health []component.Health
		want   int
		status string
	}{
		{"all healthy", []component.Health{{Name: "discovery", Status: component.StatusHealthy}}, http.StatusOK, "healthy"},
		{"degraded", []component.Health{{Name: "discovery", Status: component.StatusDegraded}}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{
			{Name: "discovery", Status: component.StatusUnhealthy},
			{Name: "http-server", Status: component.StatusHealthy},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t, func(context.Context) []component.Health { return tc.health })
			rr := serve(s, "GET", "/ready")
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["status"] != tc.status {
				t.Errorf("expected status %s, got %v", tc.status, body["status"])
			}
			if body["service"] != "test-svc" {
				t.Errorf("expected service test-svc, got %v", body["service"])
			}
		})
	}
}

func TestInfo(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := serve(s, "GET", "/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["service"] != "test-svc" || body["version"] != "1.0.0" || body["build_version"] == nil {
		t.Errorf("unexpected info body %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	serve(s, "GET", "/health")

	rr := serve(s, "GET", "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "test_http_requests_total") {
		t.Errorf("expected request counter in exposition, got:\n%s", rr.Body.String())
	}
}

func TestMetricsEndpointOptional(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(Config{Port: 0}, logger.NewNop())
	s.RegisterDefaultEndpoints("svc", "", nil, nil)

	if rr := serve(s, "GET", "/metrics"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a metrics handler, got %d", rr.Code)
	}
}

func TestNoRouteEnvelope(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := serve(s, "GET", "/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
		code apperrors.ErrorCode
	}{
		{"app error", apperrors.RegistryQuery(io.ErrUnexpectedEOF), http.StatusInternalServerError, apperrors.ErrCodeRegistryQuery},
		{"not found", apperrors.NotFound("route", "/x"), http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"plain error", io.EOF, http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tc.err)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, body.Error.Code)
			}
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	s, _ := newTestServer(t, nil)
	comp := NewComponent(s)
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(ctx) })

	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.Running() {
		t.Error("expected server to be stopped")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

func TestStartBindFailure(t *testing.T) {
	taken := httptest.NewServer(http.NotFoundHandler())
	defer taken.Close()

	host := strings.TrimPrefix(taken.URL, "http://")
	idx := strings.LastIndex(host, ":")

	gin.SetMode(gin.TestMode)
	port, err := strconv.Atoi(host[idx+1:])
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	s := New(Config{Host: host[:idx], Port: port}, logger.NewNop())
	if err := s.Start(context.Background()); err == nil {
		_ = s.Stop(context.Background())
		t.Fatal("expected bind failure on a taken port")
	}
}

func TestComponentRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.GinEngine().GET("/", func(c *gin.Context) { RespondOK(c, gin.H{}) })
	s.GinEngine().GET("/services", func(c *gin.Context) { RespondOK(c, gin.H{}) })

	routes := NewComponent(s).Routes()
	if len(routes) != 6 {
		t.Fatalf("expected 6 routes, got %d: %+v", len(routes), routes)
	}
	if routes[0].Path != "/" || routes[1].Path != "/services" {
		t.Errorf("expected API routes first, got %+v", routes[:2])
	}
	for _, r := range routes[2:] {
		if !systemPaths[r.Path] {
			t.Errorf("expected system route, got %s", r.Path)
		}
		if !strings.HasSuffix(r.Handler, "(system)") {
			t.Errorf("expected system label on %s, got %q", r.Path, r.Handler)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := New(Config{Host: "127.0.0.1", Port: 8000}, logger.NewNop())
	d := NewComponent(s).Describe()
	if d.Type != "server" || d.Port != 8000 || d.Details != "127.0.0.1:8000" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/consul-service/api.(*Handler).Services-fm", "Handler.Services"},
		{"github.com/kbukum/consul-service/server/endpoint.Readiness.func1", "readiness"},
		{"github.com/gin-gonic/gin.WrapH.func1", "wraph"},
	}
	for _, tc := range tests {
		if got := formatHandlerName(tc.in); got != tc.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
