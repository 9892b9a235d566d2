// Package ops exposes the healthz/metrics HTTP surface.
package ops

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// StatusFunc supplies the most recent cycle summary.
type StatusFunc func() watch.CycleStatus

// Server serves /healthz and /metrics. It carries no product API; the
// bot's only outward interface is the notification POST.
type Server struct {
	router chi.Router
	status StatusFunc
	clock  watch.Clock
	logger *zap.Logger
}

type healthzResponse struct {
	Status    string            `json:"status"`
	Time      time.Time         `json:"time"`
	LastCycle watch.CycleStatus `json:"last_cycle"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(status StatusFunc, clock watch.Clock, logger *zap.Logger) *Server {
	s := &Server{
		status: status,
		clock:  clock,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Handler returns the HTTP handler for the ops listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthzResponse{
		Status: "ok",
		Time:   s.clock.Now(),
	}
	if s.status != nil {
		resp.LastCycle = s.status()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write healthz response", zap.Error(err))
	}
}
