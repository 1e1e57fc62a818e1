package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/security"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// feedAccept はフィード取得時のAcceptヘッダー。
const feedAccept = "application/rss+xml,text/xml"

// FeedExtractor はフィード文書から投稿を抽出する。
// now は更新日時が取れないエントリに使う時刻。
type FeedExtractor interface {
	ExtractFeed(body []byte, limit int, now time.Time) ([]model.Post, error)
}

// FeedSource はサブレディットの配信フィードから投稿を取得する。
type FeedSource struct {
	fetcher   upstream.Fetcher
	endpoints reddit.Endpoints
	extractor FeedExtractor
	logger    *slog.Logger
	now       func() time.Time
}

// NewFeedSource はFeedSourceの新しいインスタンスを生成する。
func NewFeedSource(fetcher upstream.Fetcher, endpoints reddit.Endpoints, extractor FeedExtractor, logger *slog.Logger) *FeedSource {
	return &FeedSource{
		fetcher:   fetcher,
		endpoints: endpoints,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// Name はPostSourceを実装する。
func (s *FeedSource) Name() string { return NameFeed }

// ListPosts はPostSourceを実装する。
func (s *FeedSource) ListPosts(ctx context.Context, subreddit string, limit int) []model.Post {
	feedURL := s.endpoints.FeedURL(subreddit)
	header := http.Header{}
	header.Set("Accept", feedAccept)

	body, err := upstream.GetBody(ctx, s.fetcher, feedURL, header)
	if err != nil {
		s.logger.Warn("feed fetch failed",
			slog.String("subreddit", subreddit),
			slog.String("url", feedURL),
			slog.Any("error", err),
		)
		return nil
	}

	posts, err := s.extractor.ExtractFeed(body, limit, s.now())
	if err != nil {
		s.logger.Warn("feed parse failed",
			slog.String("subreddit", subreddit),
			slog.Any("error", model.NewParseFailedError(feedURL, err)),
		)
		return nil
	}
	return truncate(posts, limit)
}

var (
	feedEntryPattern   = regexp.MustCompile(`(?is)<entry>.*?</entry>`)
	feedTitlePattern   = regexp.MustCompile(`(?is)<title>(.*?)</title>`)
	feedLinkPattern    = regexp.MustCompile(`(?i)<link[^>]*href="([^"]+)"`)
	feedUpdatedPattern = regexp.MustCompile(`(?i)<updated>([^<]+)</updated>`)
	feedAuthorPattern  = regexp.MustCompile(`(?i)<name>([^<]+)</name>`)
	cdataPattern       = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
)

// PatternFeedExtractor は正規表現でフィードのエントリを走査する。
// 壊れたXMLでも取れる範囲で取り出す。
type PatternFeedExtractor struct {
	stripper *security.MarkupStripper
}

// NewPatternFeedExtractor はPatternFeedExtractorの新しいインスタンスを生成する。
func NewPatternFeedExtractor(stripper *security.MarkupStripper) *PatternFeedExtractor {
	return &PatternFeedExtractor{stripper: stripper}
}

// ExtractFeed はFeedExtractorを実装する。エラーを返すことはない。
func (e *PatternFeedExtractor) ExtractFeed(body []byte, limit int, now time.Time) ([]model.Post, error) {
	var posts []model.Post
	for _, block := range feedEntryPattern.FindAll(body, -1) {
		if len(posts) >= limit {
			break
		}

		title := e.stripper.Strip(cdataPattern.ReplaceAllString(firstGroup(feedTitlePattern, block), ""))
		link := strings.TrimSpace(firstGroup(feedLinkPattern, block))
		if title == "" || link == "" {
			continue
		}

		created := now
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(firstGroup(feedUpdatedPattern, block))); err == nil {
			created = parsed
		}

		author := strings.TrimSpace(firstGroup(feedAuthorPattern, block))
		if author == "" {
			author = model.DeletedAuthor
		}

		posts = append(posts, stubPost(title, feedAuthorName(author), created, link, canonicalPermalink(link)))
	}
	return posts, nil
}

// GofeedExtractor はgofeedでフィードを構文解析する。
type GofeedExtractor struct {
	parser   *gofeed.Parser
	stripper *security.MarkupStripper
}

// NewGofeedExtractor はGofeedExtractorの新しいインスタンスを生成する。
func NewGofeedExtractor(stripper *security.MarkupStripper) *GofeedExtractor {
	return &GofeedExtractor{parser: gofeed.NewParser(), stripper: stripper}
}

// ExtractFeed はFeedExtractorを実装する。
func (e *GofeedExtractor) ExtractFeed(body []byte, limit int, now time.Time) ([]model.Post, error) {
	feed, err := e.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("フィード解析に失敗: %w", err)
	}

	var posts []model.Post
	for _, item := range feed.Items {
		if len(posts) >= limit {
			break
		}
		if item == nil {
			continue
		}

		title := e.stripper.Strip(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		created := now
		switch {
		case item.UpdatedParsed != nil:
			created = *item.UpdatedParsed
		case item.PublishedParsed != nil:
			created = *item.PublishedParsed
		}

		author := model.DeletedAuthor
		if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
			author = item.Authors[0].Name
		}

		posts = append(posts, stubPost(title, feedAuthorName(author), created, link, canonicalPermalink(link)))
	}
	return posts, nil
}

// feedAuthorName はフィードの著者表記からユーザー名を取り出す。
func feedAuthorName(name string) string {
	return strings.Replace(name, "/u/", "", 1)
}

func firstGroup(re *regexp.Regexp, b []byte) string {
	m := re.FindSubmatch(b)
	if len(m) < 2 {
		return ""
	}
	return string(m[1])
}
