// Package source は投稿一覧の取得元（構造化JSON・配信フィード・旧HTML）を提供する。
// 各ソースは失敗をエラーとして返さず、空の結果として扱う。
package source

import (
	"context"
	"log/slog"

	"github.com/hitoshi/redditscraper/internal/model"
)

// ソース名。レスポンスの stats.source に出力される。
const (
	NameJSON      = "json"
	NameFeed      = "rss"
	NameHTML      = "html"
	NamePaginated = "paginated"
	NameNone      = "none"
)

// 取得結果の分類
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
)

// PostSource は投稿一覧の取得元。
// 失敗時は空のスライスを返し、呼び出し元は次のソースへ進む。
type PostSource interface {
	Name() string
	ListPosts(ctx context.Context, subreddit string, limit int) []model.Post
}

// OutcomeRecorder はソースごとの取得結果の記録先。
type OutcomeRecorder interface {
	RecordSourceOutcome(source, outcome string)
}

// Chain は登録順にソースを試し、最初に空でない結果を返したソースを採用する。
// 結果のマージは行わない。
type Chain struct {
	sources  []PostSource
	recorder OutcomeRecorder
	logger   *slog.Logger
}

// NewChain はChainの新しいインスタンスを生成する。
// recorder が nil の場合は結果を記録しない。
func NewChain(logger *slog.Logger, recorder OutcomeRecorder, sources ...PostSource) *Chain {
	return &Chain{
		sources:  sources,
		recorder: recorder,
		logger:   logger,
	}
}

// Fetch は投稿一覧と採用したソース名を返す。
// 全ソースが空の場合は NameNone を返す。
func (c *Chain) Fetch(ctx context.Context, subreddit string, limit int) ([]model.Post, string) {
	for _, src := range c.sources {
		if ctx.Err() != nil {
			break
		}

		posts := src.ListPosts(ctx, subreddit, limit)
		if len(posts) > 0 {
			c.record(src.Name(), OutcomeOK)
			c.logger.Info("post source selected",
				slog.String("source", src.Name()),
				slog.String("subreddit", subreddit),
				slog.Int("count", len(posts)),
			)
			return posts, src.Name()
		}

		c.record(src.Name(), OutcomeEmpty)
		c.logger.Warn("post source returned no posts, falling back",
			slog.String("source", src.Name()),
			slog.String("subreddit", subreddit),
		)
	}
	return nil, NameNone
}

func (c *Chain) record(name, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordSourceOutcome(name, outcome)
	}
}

// truncate はpostsを最大limit件に切り詰める。
func truncate(posts []model.Post, limit int) []model.Post {
	if limit >= 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
