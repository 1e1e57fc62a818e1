package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/hitoshi/redditscraper/internal/model"
	"github.com/hitoshi/redditscraper/internal/reddit"
	"github.com/hitoshi/redditscraper/internal/security"
	"github.com/hitoshi/redditscraper/internal/upstream"
)

// minHTMLTitleLength より短いタイトルはナビゲーション等のリンクとみなして捨てる。
const minHTMLTitleLength = 10

// HTMLExtractor は旧HTMLリスティングページから投稿を抽出する。
type HTMLExtractor interface {
	ExtractHTML(body []byte, limit int, now time.Time) ([]model.Post, error)
}

// HTMLSource は旧HTMLリスティングページから投稿を取得する。最後の手段として使う。
type HTMLSource struct {
	fetcher   upstream.Fetcher
	endpoints reddit.Endpoints
	extractor HTMLExtractor
	logger    *slog.Logger
	now       func() time.Time
}

// NewHTMLSource はHTMLSourceの新しいインスタンスを生成する。
func NewHTMLSource(fetcher upstream.Fetcher, endpoints reddit.Endpoints, extractor HTMLExtractor, logger *slog.Logger) *HTMLSource {
	return &HTMLSource{
		fetcher:   fetcher,
		endpoints: endpoints,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// Name はPostSourceを実装する。
func (s *HTMLSource) Name() string { return NameHTML }

// ListPosts はPostSourceを実装する。
func (s *HTMLSource) ListPosts(ctx context.Context, subreddit string, limit int) []model.Post {
	pageURL := s.endpoints.OldListingURL(subreddit)

	body, err := upstream.GetBody(ctx, s.fetcher, pageURL, nil)
	if err != nil {
		s.logger.Warn("html listing fetch failed",
			slog.String("subreddit", subreddit),
			slog.String("url", pageURL),
			slog.Any("error", err),
		)
		return nil
	}

	posts, err := s.extractor.ExtractHTML(body, limit, s.now())
	if err != nil {
		s.logger.Warn("html listing parse failed",
			slog.String("subreddit", subreddit),
			slog.Any("error", model.NewParseFailedError(pageURL, err)),
		)
		return nil
	}
	return truncate(posts, limit)
}

var htmlTitleAnchorPattern = regexp.MustCompile(`(?is)<a[^>]*class="(?:title|may-blank)[^"]*"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)

// PatternHTMLExtractor は正規表現でタイトルリンクを走査する。
type PatternHTMLExtractor struct {
	endpoints reddit.Endpoints
	stripper  *security.MarkupStripper
}

// NewPatternHTMLExtractor はPatternHTMLExtractorの新しいインスタンスを生成する。
func NewPatternHTMLExtractor(endpoints reddit.Endpoints, stripper *security.MarkupStripper) *PatternHTMLExtractor {
	return &PatternHTMLExtractor{endpoints: endpoints, stripper: stripper}
}

// ExtractHTML はHTMLExtractorを実装する。エラーを返すことはない。
func (e *PatternHTMLExtractor) ExtractHTML(body []byte, limit int, now time.Time) ([]model.Post, error) {
	var posts []model.Post
	for _, m := range htmlTitleAnchorPattern.FindAllSubmatch(body, -1) {
		if len(posts) >= limit {
			break
		}
		if p, ok := anchorPost(e.endpoints, string(m[1]), e.stripper.Strip(string(m[2])), now); ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// GoqueryHTMLExtractor はgoqueryでDOMを構築し、タイトルリンクを選択する。
type GoqueryHTMLExtractor struct {
	endpoints reddit.Endpoints
	stripper  *security.MarkupStripper
}

// NewGoqueryHTMLExtractor はGoqueryHTMLExtractorの新しいインスタンスを生成する。
func NewGoqueryHTMLExtractor(endpoints reddit.Endpoints, stripper *security.MarkupStripper) *GoqueryHTMLExtractor {
	return &GoqueryHTMLExtractor{endpoints: endpoints, stripper: stripper}
}

// ExtractHTML はHTMLExtractorを実装する。
func (e *GoqueryHTMLExtractor) ExtractHTML(body []byte, limit int, now time.Time) ([]model.Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗: %w", err)
	}

	var posts []model.Post
	doc.Find(`a[class^="title"][href], a[class^="may-blank"][href]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(posts) >= limit {
			return false
		}
		href, _ := sel.Attr("href")
		inner, err := sel.Html()
		if err != nil {
			return true
		}
		if p, ok := anchorPost(e.endpoints, href, e.stripper.Strip(inner), now); ok {
			posts = append(posts, p)
		}
		return true
	})
	return posts, nil
}

// anchorPost はタイトルリンク1件から投稿を組み立てる。
// 空または短すぎるタイトルは false を返す。
func anchorPost(endpoints reddit.Endpoints, href, title string, now time.Time) (model.Post, bool) {
	href = strings.TrimSpace(href)
	if href == "" || title == "" || utf8.RuneCountInString(title) < minHTMLTitleLength {
		return model.Post{}, false
	}

	permalink := canonicalPermalink(href)
	if permalink == "" {
		permalink = href
	}
	return stubPost(title, model.UnknownAuthor, now, endpoints.AbsoluteOld(href), permalink), true
}
