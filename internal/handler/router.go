package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/stockwatch/internal/metrics"
	"github.com/hitoshi/stockwatch/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger      *slog.Logger
	LinkService LinkServiceInterface
	CheckRunner CheckRunner
	Gatherer    prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	linkHandler := NewLinkHandler(deps.LinkService)
	checkHandler := NewCheckHandler(deps.CheckRunner)

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/links", func(r chi.Router) {
			r.Post("/", linkHandler.AddLinks)
			r.Get("/", linkHandler.ListLinks)
			r.Delete("/", linkHandler.RemoveAllLinks)
			r.Delete("/{id}", linkHandler.RemoveLink)
		})

		r.Post("/check", checkHandler.RunCheck)
	})

	return r
}

// HealthCheck は死活監視用のエンドポイント。
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
