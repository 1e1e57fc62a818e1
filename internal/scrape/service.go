// Package scrape は投稿一覧の取得、日付フィルタ、コメント取得をまとめて1回のスクレイプ結果を組み立てる。
package scrape

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/source"
)

// デフォルト値
const (
	DefaultOverfetchFactor    = 3
	DefaultCommentConcurrency = 1
)

// Lister はフォールバック付きの投稿一覧取得。
type Lister interface {
	Fetch(ctx context.Context, subreddit string, limit int) ([]model.Post, string)
}

// SortedLister はソート・期間指定付きの投稿一覧取得。
type SortedLister interface {
	FetchSorted(ctx context.Context, subreddit string, maxPosts int, sort reddit.Sort, tf reddit.TimeFilter) []model.Post
}

// CommentLoader は投稿1件分のコメント取得。
type CommentLoader interface {
	Load(ctx context.Context, permalink string, limit int) []model.Comment
}

// Recorder はスクレイプ結果のメトリクス記録先。
type Recorder interface {
	RecordScrape(source string, posts, comments int)
}

// Deps はServiceの依存関係。
type Deps struct {
	// Chain は条件指定なしの場合に使う json → rss → html のチェーン。
	Chain Lister
	// Paginator は条件指定ありの場合に使う。
	Paginator SortedLister
	// Fallback はPaginatorが空だった場合に試すチェーン。
	Fallback Lister
	Comments CommentLoader
	Metrics  Recorder
	Logger   *slog.Logger
}

// Options はServiceの設定。
type Options struct {
	// OverfetchFactor は日付フィルタで減る分を見込んだ取得倍率。
	OverfetchFactor int
	// CommentConcurrency はコメント取得の同時実行数。
	CommentConcurrency int
}

// Service はスクレイプ処理を提供する。
type Service struct {
	chain       Lister
	paginator   SortedLister
	fallback    Lister
	comments    CommentLoader
	metrics     Recorder
	logger      *slog.Logger
	overfetch   int
	concurrency int
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps, opts Options) *Service {
	if opts.OverfetchFactor < 1 {
		opts.OverfetchFactor = DefaultOverfetchFactor
	}
	if opts.CommentConcurrency < 1 {
		opts.CommentConcurrency = DefaultCommentConcurrency
	}
	return &Service{
		chain:       deps.Chain,
		paginator:   deps.Paginator,
		fallback:    deps.Fallback,
		comments:    deps.Comments,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		overfetch:   opts.OverfetchFactor,
		concurrency: opts.CommentConcurrency,
		now:         time.Now,
	}
}

// Scrape は条件に従って投稿とコメントを取得し、集計結果を返す。
// 上流の失敗は空の結果として扱い、エラーはコンテキストがキャンセルされた場合のみ返す。
func (s *Service) Scrape(ctx context.Context, params model.ScrapeParams) (*model.Result, error) {
	scrapedAt := s.now()
	sort := reddit.ParseSort(params.Sort)
	tf := reddit.ParseTimeFilter(params.TimeFilter)

	posts, sourceName := s.listPosts(ctx, params, sort, tf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts, daily := filterByDate(posts, params.DateRange, params.Limit)

	comments, err := s.loadComments(ctx, posts, params)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		Posts:      posts,
		Comments:   comments,
		DailyStats: daily,
		Stats: model.Stats{
			TotalPosts:    len(posts),
			TotalComments: len(comments),
			SortBy:        string(sort),
			TimeFilter:    string(tf),
			DateRange:     params.DateRange,
			Source:        sourceName,
			ScrapedAt:     model.NewTimestamp(scrapedAt),
		},
	}

	if s.metrics != nil {
		s.metrics.RecordScrape(sourceName, len(posts), len(comments))
	}
	s.logger.Info("scrape completed",
		slog.String("subreddit", params.Subreddit),
		slog.String("source", sourceName),
		slog.String("sort", string(sort)),
		slog.String("time_filter", string(tf)),
		slog.Int("posts", len(posts)),
		slog.Int("comments", len(comments)),
		slog.Float64("duration_ms", float64(time.Since(scrapedAt).Milliseconds())),
	)
	return result, nil
}

// listPosts は条件指定の有無に応じて投稿一覧の取得方法を選ぶ。
func (s *Service) listPosts(ctx context.Context, params model.ScrapeParams, sort reddit.Sort, tf reddit.TimeFilter) ([]model.Post, string) {
	if !params.Filtered {
		return s.chain.Fetch(ctx, params.Subreddit, params.Limit)
	}

	size := params.Limit * s.overfetch
	posts := s.paginator.FetchSorted(ctx, params.Subreddit, size, sort, tf)
	if len(posts) > 0 {
		return posts, source.NamePaginated
	}

	s.logger.Warn("paginated listing returned no posts, falling back",
		slog.String("subreddit", params.Subreddit),
	)
	if s.fallback == nil {
		return nil, source.NameNone
	}
	return s.fallback.Fetch(ctx, params.Subreddit, size)
}

// loadComments は投稿ごとのコメントを取得し、投稿の並び順を保って連結する。
func (s *Service) loadComments(ctx context.Context, posts []model.Post, params model.ScrapeParams) ([]model.Comment, error) {
	perPost := make([][]model.Comment, len(posts))
	withDate := params.DateRange.Active()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, post := range posts {
		i, post := i, post
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loaded := s.comments.Load(gctx, post.Permalink, params.CommentsPerPost)
			for j := range loaded {
				loaded[j].AttachPost(post, withDate)
			}
			perPost[i] = loaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comments := []model.Comment{}
	for _, cs := range perPost {
		comments = append(comments, cs...)
	}
	return comments, nil
}

// filterByDate は日付範囲内の投稿を最大limit件残し、UTC日付ごとの件数を数える。
// 範囲が指定されていない場合はlimit件に切り詰めるだけで、件数は空になる。
func filterByDate(posts []model.Post, dr model.DateRange, limit int) ([]model.Post, map[string]int) {
	daily := map[string]int{}
	kept := make([]model.Post, 0, min(len(posts), max(limit, 0)))

	for _, p := range posts {
		if len(kept) >= limit {
			break
		}
		if dr.Active() {
			if !dr.Contains(p.CreatedUTC.Time) {
				continue
			}
			daily[p.CreatedUTC.Date()]++
		}
		kept = append(kept, p)
	}
	return kept, daily
}
