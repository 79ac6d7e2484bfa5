package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRowsCleaned(t *testing.T) {
	before := testutil.ToFloat64(RowsCleanedTotal.WithLabelValues("v1", "long"))

	RecordRowsCleaned("v1", "long", 5)
	RecordRowsCleaned("v1", "long", 0)

	after := testutil.ToFloat64(RowsCleanedTotal.WithLabelValues("v1", "long"))
	assert.Equal(t, 5.0, after-before)
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CleanCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CleanCacheTotal.WithLabelValues("miss"))
	errs := testutil.ToFloat64(CleanCacheTotal.WithLabelValues("error"))

	RecordCacheLookup(3, 2)
	RecordCacheError()

	assert.Equal(t, 3.0, testutil.ToFloat64(CleanCacheTotal.WithLabelValues("hit"))-hits)
	assert.Equal(t, 2.0, testutil.ToFloat64(CleanCacheTotal.WithLabelValues("miss"))-misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(CleanCacheTotal.WithLabelValues("error"))-errs)
}

func TestRecordRunAndDurations(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("completed"))

	assert.NotPanics(t, func() {
		RecordRun("completed", 2*time.Second)
		RecordCleanDuration("column", 10*time.Millisecond)
		RecordDuplicates(4)
		RecordDuplicates(-1)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(RunsTotal.WithLabelValues("completed"))-before)
}

func TestHandler_Metrics(t *testing.T) {
	RecordRowsCleaned("v1", "short", 1)

	srv := httptest.NewServer(NewHandler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "textprep_rows_cleaned_total")
}

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no dependencies",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "unconfigured dependency is skipped",
			checks: map[string]HealthCheck{
				"redis": func(ctx context.Context) map[string]interface{} { return nil },
			},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "dependency up",
			checks: map[string]HealthCheck{
				"redis": func(ctx context.Context) map[string]interface{} {
					return map[string]interface{}{"status": "up"}
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name: "dependency down",
			checks: map[string]HealthCheck{
				"database": func(ctx context.Context) map[string]interface{} {
					return map[string]interface{}{"status": "down"}
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
		})
	}
}
