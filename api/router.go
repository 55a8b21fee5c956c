package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/service"
)

// Handler 持有接口层依赖。
type Handler struct {
	svc *service.FeedService
	log zerolog.Logger
}

// NewHandler 创建 Handler。
func NewHandler(svc *service.FeedService, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter 组装 chi 路由。
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(h.log))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, h.log, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, h.log, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/content", h.ListContent)
		r.Post("/content", h.AddContent)
		r.Get("/trending", h.Trending)

		r.Get("/blacklist", h.Blacklist)
		r.Put("/blacklist/{contentID}", h.BlockContent)
		r.Delete("/blacklist/{contentID}", h.UnblockContent)

		r.Post("/users", h.CreateUser)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Get("/feed", h.Feed)
			r.Post("/interactions", h.RecordInteraction)
			r.Post("/saved/{contentID}", h.SavePost)
			r.Get("/analytics", h.Analytics)
			r.Post("/interests", h.AddInterest)
			r.Delete("/interests/{interest}", h.RemoveInterest)
			r.Post("/blocked_keywords", h.AddBlockedKeyword)
			r.Delete("/blocked_keywords/{keyword}", h.RemoveBlockedKeyword)
		})
	})

	return r
}
