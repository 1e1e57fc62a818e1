package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/redditscraper/internal/metrics"
	"github.com/hitoshi/redditscraper/internal/middleware"
)

// Banner は定義されていないパス・メソッドに返す案内文。
const Banner = "Reddit Scraper API\n\nEndpoints:\nPOST /scrape - Get posts and comments\nPOST /download-csv - Convert to CSV"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	ScrapeService     ScrapeServiceInterface
	ScrapeDefaults    ScrapeDefaults
	CORSAllowedOrigin string
	// PathPrefix が空でない場合、/scrape と /download-csv をその配下にも公開する。
	// リバースプロキシが /api などを付けたまま転送する構成向け。
	PathPrefix string
	// MetricsGatherer がnilの場合は /metrics を公開しない。
	MetricsGatherer prometheus.Gatherer
	Logger          *slog.Logger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → CORS → SecurityHeaders
//
// CORSはルーティングより前に評価されるため、OPTIONSは全パスで204になる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	scrapeHandler := NewScrapeHandler(deps.ScrapeService, deps.ScrapeDefaults, deps.Logger)
	csvHandler := NewCSVHandler(deps.Logger)

	r.NotFound(BannerHandler)
	r.MethodNotAllowed(BannerHandler)

	api := func(r chi.Router) {
		r.Post("/scrape", scrapeHandler.Scrape)
		r.Post("/download-csv", csvHandler.DownloadCSV)
	}
	api(r)
	if prefix := strings.TrimSuffix(deps.PathPrefix, "/"); prefix != "" {
		r.Route(prefix, func(sub chi.Router) {
			sub.NotFound(BannerHandler)
			sub.MethodNotAllowed(BannerHandler)
			api(sub)
		})
	}

	r.Get("/health", Health)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	return r
}

// Health はプロセスの死活を返す。
// GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// BannerHandler は利用可能なエンドポイントの案内をテキストで返す。
func BannerHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, Banner)
}
