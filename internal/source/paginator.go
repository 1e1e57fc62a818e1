package source

import (
	"context"
	"log/slog"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// ページ取得のデフォルト値
const (
	DefaultPageSize = 100
	DefaultMaxPages = 10
)

// PaginatorOptions はPaginatorの設定。
type PaginatorOptions struct {
	PageSize int
	// MaxPages は1回の取得で辿る最大ページ数。after が返り続けても打ち切る。
	MaxPages int
}

// Paginator はソート・期間指定付きの構造化リスティングをページを辿って取得する。
type Paginator struct {
	fetcher   upstream.Fetcher
	endpoints reddit.Endpoints
	pageSize  int
	maxPages  int
	logger    *slog.Logger
}

// NewPaginator はPaginatorの新しいインスタンスを生成する。
func NewPaginator(fetcher upstream.Fetcher, endpoints reddit.Endpoints, opts PaginatorOptions, logger *slog.Logger) *Paginator {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Paginator{
		fetcher:   fetcher,
		endpoints: endpoints,
		pageSize:  opts.PageSize,
		maxPages:  opts.MaxPages,
		logger:    logger,
	}
}

// FetchSorted は最大maxPosts件の投稿を取得する。
// 途中で失敗した場合はそれまでに集めた投稿を返す。
func (p *Paginator) FetchSorted(ctx context.Context, subreddit string, maxPosts int, sort reddit.Sort, tf reddit.TimeFilter) []model.Post {
	var (
		posts []model.Post
		after string
	)

	for page := 0; page < p.maxPages && len(posts) < maxPosts; page++ {
		listingURL := p.endpoints.ListingURL(subreddit, sort, tf, p.pageSize, after)

		var listing reddit.PostListing
		if err := upstream.GetJSON(ctx, p.fetcher, listingURL, nil, &listing); err != nil {
			p.logger.Warn("paginated listing fetch failed",
				slog.String("subreddit", subreddit),
				slog.String("url", listingURL),
				slog.Int("page", page),
				slog.Int("collected", len(posts)),
				slog.Any("error", err),
			)
			break
		}

		children := listing.Data.Children
		if len(children) == 0 {
			break
		}
		for _, child := range children {
			if pp, ok := reddit.NormalizePost(child.Data, p.endpoints); ok {
				posts = append(posts, pp)
			}
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}

	p.logger.Debug("paginated listing completed",
		slog.String("subreddit", subreddit),
		slog.String("sort", string(sort)),
		slog.String("time_filter", string(tf)),
		slog.Int("count", len(posts)),
	)
	return truncate(posts, maxPosts)
}
