package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/clock/system"
	"github.com/JakeFAU/ticketwatch/internal/watch"
)

func TestHealthzReportsLastCycle(t *testing.T) {
	t.Parallel()

	last := watch.CycleStatus{
		CycleID:      "cycle-1",
		StartedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		ListingCount: 12,
		AlertsSent:   2,
		SeenCount:    5,
	}
	srv := NewServer(func() watch.CycleStatus { return last }, system.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Status    string            `json:"status"`
		LastCycle watch.CycleStatus `json:"last_cycle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "cycle-1", resp.LastCycle.CycleID)
	require.Equal(t, 12, resp.LastCycle.ListingCount)
	require.Equal(t, 2, resp.LastCycle.AlertsSent)
}

func TestMetricsEndpointServes(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, system.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
