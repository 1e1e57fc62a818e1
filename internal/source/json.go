package source

import (
	"context"
	"log/slog"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// JSONSource は構造化リスティング（new順）から投稿を取得する。
type JSONSource struct {
	fetcher   upstream.Fetcher
	endpoints reddit.Endpoints
	logger    *slog.Logger
}

// NewJSONSource はJSONSourceの新しいインスタンスを生成する。
func NewJSONSource(fetcher upstream.Fetcher, endpoints reddit.Endpoints, logger *slog.Logger) *JSONSource {
	return &JSONSource{fetcher: fetcher, endpoints: endpoints, logger: logger}
}

// Name はPostSourceを実装する。
func (s *JSONSource) Name() string { return NameJSON }

// ListPosts はPostSourceを実装する。
func (s *JSONSource) ListPosts(ctx context.Context, subreddit string, limit int) []model.Post {
	listingURL := s.endpoints.ListingURL(subreddit, reddit.SortNew, reddit.TimeAll, limit, "")

	var listing reddit.PostListing
	if err := upstream.GetJSON(ctx, s.fetcher, listingURL, nil, &listing); err != nil {
		s.logger.Warn("json listing fetch failed",
			slog.String("subreddit", subreddit),
			slog.String("url", listingURL),
			slog.Any("error", err),
		)
		return nil
	}

	posts := make([]model.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if p, ok := reddit.NormalizePost(child.Data, s.endpoints); ok {
			posts = append(posts, p)
		}
	}
	return truncate(posts, limit)
}
