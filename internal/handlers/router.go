package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Instrumenter оборачивает обработчики сбором метрик и отдаёт /metrics.
type Instrumenter interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// NewRouter собирает маршруты /api. m может быть nil - тогда метрики не публикуются.
func NewRouter(h *Handler, m Instrumenter, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(h.log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}
		r.Get("/ping", h.PingHandler)

		r.Get("/users", h.ListEmployeesHandler)
		r.Get("/organizations", h.ListOrganizationsHandler)
		r.Get("/organization_responsibles", h.ListResponsiblesHandler)

		r.Post("/tenders/new", h.CreateTenderHandler)
		r.Get("/tenders", h.GetTendersHandler)
		r.Get("/tenders/my", h.GetUserTendersHandler)
		r.Get("/tenders/{tenderId}/status", h.GetTenderStatusHandler)
		r.Put("/tenders/{tenderId}/status", h.UpdateTenderStatusHandler)
		r.Patch("/tenders/{tenderId}/edit", h.EditTenderHandler)
		r.Put("/tenders/{tenderId}/rollback/{version}", h.RollbackTenderHandler)

		r.Post("/bids/new", h.CreateBidHandler)
		r.Get("/bids/my", h.GetUserBidsHandler)
		r.Get("/bids/{tenderId}/list", h.GetBidsForTenderHandler)
		r.Get("/bids/{bidId}/status", h.GetBidStatusHandler)
		r.Put("/bids/{bidId}/status", h.UpdateBidStatusHandler)
		r.Patch("/bids/{bidId}/edit", h.EditBidHandler)
		r.Put("/bids/{bidId}/rollback/{version}", h.RollbackBidHandler)
		r.Put("/bids/{bidId}/submit_decision", h.SubmitBidDecisionHandler)
		r.Put("/bids/{bidId}/feedback", h.CreateBidFeedbackHandler)
		r.Get("/bids/{tenderId}/reviews", h.GetBidReviewsHandler)
	})
	return r
}

// AccessLog пишет одну строку zap на каждый запрос
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
