package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-scheduler/api"
	"interview-scheduler/metrics"
	"interview-scheduler/models"
	"interview-scheduler/scheduler"
	"interview-scheduler/solver"
)

func newTestServer() *api.Server {
	engine := scheduler.New(solver.NewBacktracking())
	return api.NewServer(engine, zerolog.Nop())
}

const validBody = `{
	"stages": [
		{"stage_name": "screen", "duration": 30,
		 "seats": [{"seat_id": "s1", "role": "trained"}]}
	],
	"interviewers": [
		{"id": "intv_1", "role": "trained"}
	],
	"availability_windows": [
		{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}
	]
}`

func doRequest(t *testing.T, srv *api.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRoot(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Interview Scheduling API is running")
}

func TestScheduleEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodPost, "/schedule", validBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body struct {
		Status    string                     `json:"status"`
		Schedules map[string]models.Schedule `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(models.StatusOptimal), body.Status)

	best, ok := body.Schedules["schedule1"]
	require.True(t, ok, "ranked schedules start at schedule1")
	require.Len(t, best.Events, 1)
	assert.Equal(t, "screen", best.Events[0].StageName)
	assert.Equal(t, "2025-09-01T09:00", best.Events[0].Start)
	assert.Equal(t, "2025-09-01T09:30", best.Events[0].End)
	assert.Equal(t, 1.0, best.Metrics.Efficiency)
	assert.Equal(t, best.Metrics.Efficiency, best.Score)
}

func TestScheduleBadRequests(t *testing.T) {
	tests := map[string]struct {
		body string
	}{
		"malformed_json": {
			body: `{"stages": [`,
		},
		"unknown_field": {
			body: `{"stages": [], "interviewers": [], "availability_windows": [], "bogus": 1}`,
		},
		"missing_stages": {
			body: `{
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}]
			}`,
		},
		"unknown_role": {
			body: `{
				"stages": [{"stage_name": "screen", "duration": 30,
					"seats": [{"seat_id": "s1", "role": "observer"}]}],
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}]
			}`,
		},
		"zero_duration": {
			body: `{
				"stages": [{"stage_name": "screen", "duration": 0,
					"seats": [{"seat_id": "s1", "role": "trained"}]}],
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}]
			}`,
		},
		"bad_timestamp": {
			body: `{
				"stages": [{"stage_name": "screen", "duration": 30,
					"seats": [{"seat_id": "s1", "role": "trained"}]}],
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "monday morning", "end": "2025-09-01T17:00"}]
			}`,
		},
		"conflicting_day_policy": {
			body: `{
				"stages": [{"stage_name": "screen", "duration": 30,
					"seats": [{"seat_id": "s1", "role": "trained"}]}],
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}],
				"schedule_on_same_day": true,
				"require_distinct_days": true
			}`,
		},
		"inverted_window": {
			body: `{
				"stages": [{"stage_name": "screen", "duration": 30,
					"seats": [{"seat_id": "s1", "role": "trained"}]}],
				"interviewers": [{"id": "intv_1", "role": "trained"}],
				"availability_windows": [{"start": "2025-09-01T17:00", "end": "2025-09-01T09:00"}]
			}`,
		},
	}
	srv := newTestServer()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/schedule", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "detail")
		})
	}
}

// Rejected requests count toward requests_total under the ERROR status.
func TestScheduleRejectionCountsAsError(t *testing.T) {
	counter := metrics.RequestsTotal.WithLabelValues("ERROR")
	before := testutil.ToFloat64(counter)

	rec := doRequest(t, newTestServer(), http.MethodPost, "/schedule", `{"stages": [`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestScheduleInfeasibleIsNotAnError(t *testing.T) {
	body := `{
		"stages": [
			{"stage_name": "a", "duration": 300, "is_fixed": true,
			 "seats": [{"seat_id": "s1", "role": "trained"}]},
			{"stage_name": "b", "duration": 300, "is_fixed": true,
			 "seats": [{"seat_id": "s1", "role": "trained"}]}
		],
		"interviewers": [{"id": "intv_1", "role": "trained"}],
		"availability_windows": [
			{"start": "2025-09-01T09:00", "end": "2025-09-01T17:00"}
		]
	}`
	rec := doRequest(t, newTestServer(), http.MethodPost, "/schedule", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Status    string                     `json:"status"`
		Schedules map[string]json.RawMessage `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, string(models.StatusInfeasible), res.Status)
	assert.Empty(t, res.Schedules)
}
