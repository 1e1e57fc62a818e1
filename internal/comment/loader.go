package comment

import (
	"context"
	"log/slog"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// Loader は投稿のパーマリンクからコメントを取得する。
type Loader struct {
	fetcher   upstream.Fetcher
	endpoints reddit.Endpoints
	logger    *slog.Logger
}

// NewLoader はLoaderの新しいインスタンスを生成する。
func NewLoader(fetcher upstream.Fetcher, endpoints reddit.Endpoints, logger *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, endpoints: endpoints, logger: logger}
}

// Load は最大limit件のコメントを返す。
// 相対パーマリンクでない場合や取得・解析に失敗した場合は空のスライスを返す。
func (l *Loader) Load(ctx context.Context, permalink string, limit int) []model.Comment {
	commentsURL, ok := l.endpoints.CommentsURL(permalink)
	if !ok {
		l.logger.Debug("skipping comments for non-relative permalink",
			slog.String("permalink", permalink),
		)
		return []model.Comment{}
	}

	var listings []reddit.CommentListing
	if err := upstream.GetJSON(ctx, l.fetcher, commentsURL, nil, &listings); err != nil {
		l.logger.Warn("comment fetch failed",
			slog.String("url", commentsURL),
			slog.Any("error", err),
		)
		return []model.Comment{}
	}

	return Extract(reddit.CommentForest(listings), limit)
}
