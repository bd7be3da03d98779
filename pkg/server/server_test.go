package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/discrete/pkg/cache"
	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/observability"
	"github.com/matzehuels/discrete/pkg/pipeline"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(c, nil, nil)
	t.Cleanup(func() { runner.Close() })
	return New(runner, opts)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealth_ReturnsOK(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Build.Version)
}

// =============================================================================
// Enumerate Tests
// =============================================================================

func TestEnumerate_Dihedral(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{3}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	require.NotNil(t, res.Group)
	assert.Equal(t, 6, res.Group.PointCount())
	assert.True(t, res.Stats.Complete)
	assert.False(t, res.CacheHit)

	w = do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{3}"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.CacheHit)
}

func TestEnumerate_PartialResult(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{7,3}", "limit": 20}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 20, res.Stats.Steps)
	assert.False(t, res.Stats.Complete)
	assert.False(t, res.Group.Complete())
}

func TestEnumerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode derrors.Code
	}{
		{"malformed json", `{"schlafli":`, derrors.ErrCodeInvalidFormat},
		{"unknown field", `{"schlafli": "{3}", "depth": 2}`, derrors.ErrCodeInvalidFormat},
		{"bad schlafli", `{"schlafli": "{7,x}"}`, derrors.ErrCodeInvalidSchlafli},
		{"negative limit", `{"generators": 2, "limit": -5}`, derrors.ErrCodeInvalidLimit},
		{"relation out of range", `{"generators": 2, "relations": ["0 3"]}`, derrors.ErrCodeInvalidRelation},
		{"subgroup out of range", `{"generators": 2, "subgroup": "4"}`, derrors.ErrCodeInvalidSubgroup},
		{"relation repeat too large", `{"generators": 2, "relations": ["0 1;1000000000"]}`, derrors.ErrCodeInvalidRelation},
		{"relation repeat overflows", `{"generators": 2, "relations": ["0 1;4611686018427387904"]}`, derrors.ErrCodeInvalidRelation},
		{"schlafli entry too large", `{"schlafli": "{1000000000,3}"}`, derrors.ErrCodeInvalidSchlafli},
	}

	s := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/enumerate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestEnumerate_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodGet, "/v1/enumerate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// =============================================================================
// Quotient Tests
// =============================================================================

func TestQuotient_Dodecahedron(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodPost, "/v1/quotient", `{"schlafli": "{5,3}", "subgroup": "0 1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pipeline.QuotientResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Quotient)
	assert.Equal(t, 120, res.Quotient.Elements.PointCount())
	assert.Equal(t, 12, res.Quotient.Cosets.PointCount())
	assert.Len(t, res.Quotient.InverseMap, 120)
	assert.True(t, res.ElementStats.Complete)
	assert.True(t, res.CosetStats.Complete)
}

func TestQuotient_InvalidSubgroup(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodPost, "/v1/quotient", `{"schlafli": "{5,3}", "subgroup": "0 7"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, derrors.ErrCodeInvalidSubgroup, decodeError(t, w).Code)
}

// =============================================================================
// Metrics Tests
// =============================================================================

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetHTTPHooks(hooks)
	observability.SetEnumerationHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})

	w := do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{3}"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{1}"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.HTTPRequestsTotal.WithLabelValues("POST", "/v1/enumerate", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.HTTPRequestsTotal.WithLabelValues("POST", "/v1/enumerate", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.HTTPErrorsTotal.WithLabelValues("POST", "/v1/enumerate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.EnumerationsTotal.WithLabelValues("enum", "complete")))

	w = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "discrete_http_requests_total")
	assert.Contains(t, w.Body.String(), "discrete_enumerations_total")
}

func TestMetrics_NotMountedByDefault(t *testing.T) {
	s := newTestServer(t, Options{})
	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(derrors.New(derrors.ErrCodeInvalidLimit, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(derrors.New(derrors.ErrCodeNetwork, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(fmt.Errorf("enumerate: %w", context.DeadlineExceeded)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}

func TestEnumerate_Timeout(t *testing.T) {
	s := newTestServer(t, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	w := do(t, s, http.MethodPost, "/v1/enumerate", `{"schlafli": "{5,3,3}", "limit": 1000000}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, derrors.ErrCodeTimeout, decodeError(t, w).Code)
	assert.Less(t, time.Since(start), 5*time.Second)
}
