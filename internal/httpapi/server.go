// Package httpapi exposes the calendar queries as JSON over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hray3182/daybook/internal/identity"
	"github.com/hray3182/daybook/internal/metrics"
	"github.com/hray3182/daybook/internal/models"
)

// UserIDHeader carries the caller's user id. It is trusted as-is; the server
// is meant to sit behind an authenticating proxy.
const UserIDHeader = "X-User-ID"

type CalendarService interface {
	DatesWithEvents(ctx context.Context, year, month mo.Option[int]) ([]civil.Date, error)
	DatesForLabel(ctx context.Context, labelID int, year, month mo.Option[int]) ([]civil.Date, error)
	MonthlyStats(ctx context.Context, labelID int, year, month mo.Option[int]) (*models.LabelMonthStats, error)
}

type Server struct {
	calendar CalendarService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func New(calendar CalendarService, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{calendar: calendar, metrics: m, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(identify)
		r.Get("/calendar/dates", s.handleDates)
		r.Get("/labels/{labelID}/dates", s.handleLabelDates)
		r.Get("/labels/{labelID}/stats", s.handleLabelStats)
		r.Get("/rules/summary", s.handleRuleSummary)
	})
	return r
}

// identify stores the user id from UserIDHeader in the request context.
// Requests without a valid id pass through and fail later as unauthenticated.
func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(UserIDHeader); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				r = r.WithContext(identity.WithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(route, status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
