package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/redditscraper/internal/comment"
	"github.com/hitoshi/redditscraper/internal/config"
	"github.com/hitoshi/redditscraper/internal/handler"
	"github.com/hitoshi/redditscraper/internal/metrics"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/scrape"
	"github.com/hitoshi/redditscraper/internal/security"
	"github.com/hitoshi/redditscraper/internal/source"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// Components はConfigから組み立てた依存関係一式。
type Components struct {
	Registry *prometheus.Registry
	Service  *scrape.Service
	Defaults handler.ScrapeDefaults
	Router   http.Handler
}

// Build はConfigに従って上流クライアント、投稿ソース、スクレイプサービス、ルーターをワイヤリングする。
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	endpoints := reddit.Endpoints{
		BaseURL:    cfg.RedditBaseURL,
		OldBaseURL: cfg.RedditOldBaseURL,
	}

	client, err := newUpstreamClient(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	fetcher := upstream.NewHTTPFetcher(client, upstream.Options{
		UserAgent:   cfg.RedditUserAgent,
		MaxBodySize: cfg.FetchMaxSize,
		RateLimit:   cfg.UpstreamRateLimit,
		Burst:       cfg.UpstreamBurst,
	}, collector, logger)

	stripper := security.NewMarkupStripper()
	feedExtractor, htmlExtractor := newExtractors(cfg.ParseMode, endpoints, stripper)

	feedSource := source.NewFeedSource(fetcher, endpoints, feedExtractor, logger)
	htmlSource := source.NewHTMLSource(fetcher, endpoints, htmlExtractor, logger)

	chain := source.NewChain(logger, collector,
		source.NewJSONSource(fetcher, endpoints, logger),
		feedSource,
		htmlSource,
	)
	fallback := source.NewChain(logger, collector, feedSource, htmlSource)
	paginator := source.NewPaginator(fetcher, endpoints, source.PaginatorOptions{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	}, logger)

	service := scrape.NewService(scrape.Deps{
		Chain:     chain,
		Paginator: paginator,
		Fallback:  fallback,
		Comments:  comment.NewLoader(fetcher, endpoints, logger),
		Metrics:   collector,
		Logger:    logger,
	}, scrape.Options{
		OverfetchFactor:    cfg.OverfetchFactor,
		CommentConcurrency: cfg.CommentFetchConcurrency,
	})

	defaults := handler.ScrapeDefaults{
		Subreddit:          cfg.DefaultSubreddit,
		PostLimit:          cfg.DefaultPostLimit,
		MaxPostLimit:       cfg.MaxPostLimit,
		CommentsPerPost:    cfg.DefaultCommentsPerPost,
		MaxCommentsPerPost: cfg.MaxCommentsPerPost,
	}

	router := handler.NewRouter(&handler.RouterDeps{
		ScrapeService:     service,
		ScrapeDefaults:    defaults,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		PathPrefix:        cfg.APIPathPrefix,
		MetricsGatherer:   registry,
		Logger:            logger,
	})

	return &Components{
		Registry: registry,
		Service:  service,
		Defaults: defaults,
		Router:   router,
	}, nil
}

// newUpstreamClient は上流呼び出し用のhttp.Clientを生成する。
// UpstreamSafeClientが有効な場合はベースURLを検証した上でSSRF対策済みクライアントを返す。
func newUpstreamClient(cfg *config.Config) (*http.Client, error) {
	if !cfg.UpstreamSafeClient {
		return &http.Client{Timeout: cfg.FetchTimeout}, nil
	}

	guard := security.NewUpstreamGuard()
	for _, base := range []string{cfg.RedditBaseURL, cfg.RedditOldBaseURL} {
		if err := guard.ValidateBaseURL(base); err != nil {
			return nil, fmt.Errorf("invalid upstream base url %q: %w", base, err)
		}
	}
	return guard.NewSafeClient(cfg.FetchTimeout), nil
}

// newExtractors は解析モードに対応するフィード・HTMLの抽出器を返す。
func newExtractors(mode string, endpoints reddit.Endpoints, stripper *security.MarkupStripper) (source.FeedExtractor, source.HTMLExtractor) {
	if mode == config.ParseModeDOM {
		return source.NewGofeedExtractor(stripper), source.NewGoqueryHTMLExtractor(endpoints, stripper)
	}
	return source.NewPatternFeedExtractor(stripper), source.NewPatternHTMLExtractor(endpoints, stripper)
}
