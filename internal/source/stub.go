package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/hitoshi/redditscraper/internal/model"
)

// permalinkPattern はスレッドURLに含まれる正規のパーマリンク部分。
var permalinkPattern = regexp.MustCompile(`/r/\w+/comments/[^/]+/[^/]+/`)

// canonicalPermalink はリンクから正規のパーマリンクを取り出す。見つからなければ空文字列を返す。
func canonicalPermalink(link string) string {
	return permalinkPattern.FindString(link)
}

// postIDFromLink は "/comments/" 直後のパスセグメントを投稿IDとして返す。
func postIDFromLink(link string) string {
	_, rest, ok := strings.Cut(link, "/comments/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}

// stubPost はフィードやHTMLから得られる最小限の情報で投稿を組み立てる。
// 数値は0、その他は既定値で埋める。
func stubPost(title, author string, created time.Time, link, permalink string) model.Post {
	return model.Post{
		ID:         postIDFromLink(link),
		Title:      title,
		Author:     author,
		CreatedUTC: model.NewTimestamp(created),
		URL:        link,
		Permalink:  permalink,
		Flair:      model.DefaultFlair,
		Domain:     model.DefaultDomain,
	}
}
