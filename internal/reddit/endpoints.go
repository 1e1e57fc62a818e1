// Package reddit は上流コンテンツソースのエンドポイントとレスポンス形式を扱う。
// 上流のJSONを model.Post / model.Comment に正規化する処理もここに置く。
package reddit

import (
	"net/url"
	"strconv"
	"strings"
)

// 既定のエンドポイント
const (
	DefaultBaseURL    = "https://www.reddit.com"
	DefaultOldBaseURL = "https://old.reddit.com"
)

// Sort はリスティングの並び順。
type Sort string

const (
	SortHot    Sort = "hot"
	SortNew    Sort = "new"
	SortTop    Sort = "top"
	SortRising Sort = "rising"
	SortBest   Sort = "best"
)

// ParseSort は文字列を Sort に変換する。未知の値は SortNew として扱う。
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortHot:
		return SortHot
	case SortTop:
		return SortTop
	case SortRising:
		return SortRising
	case SortBest:
		return SortBest
	default:
		return SortNew
	}
}

// TimeFilter は top の集計期間。
type TimeFilter string

const (
	TimeHour  TimeFilter = "hour"
	TimeDay   TimeFilter = "day"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
	TimeYear  TimeFilter = "year"
	TimeAll   TimeFilter = "all"
)

// ParseTimeFilter は文字列を TimeFilter に変換する。未知の値は TimeAll として扱う。
func ParseTimeFilter(s string) TimeFilter {
	switch tf := TimeFilter(strings.ToLower(strings.TrimSpace(s))); tf {
	case TimeHour, TimeDay, TimeWeek, TimeMonth, TimeYear:
		return tf
	default:
		return TimeAll
	}
}

// Endpoints は上流のベースURLを保持し、各エンドポイントのURLを組み立てる。
type Endpoints struct {
	BaseURL    string
	OldBaseURL string
}

// DefaultEndpoints は本番のエンドポイントを返す。
func DefaultEndpoints() Endpoints {
	return Endpoints{BaseURL: DefaultBaseURL, OldBaseURL: DefaultOldBaseURL}
}

// ListingURL は構造化リスティングのURLを返す。
// t パラメータは sort が top の場合のみ付与する。after が空なら付与しない。
func (e Endpoints) ListingURL(subreddit string, sort Sort, tf TimeFilter, limit int, after string) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if sort == SortTop {
		q.Set("t", string(tf))
	}
	if after != "" {
		q.Set("after", after)
	}
	return e.base() + "/r/" + url.PathEscape(subreddit) + "/" + string(sort) + ".json?" + q.Encode()
}

// FeedURL はサブレディットの配信フィードのURLを返す。
func (e Endpoints) FeedURL(subreddit string) string {
	return e.base() + "/r/" + url.PathEscape(subreddit) + "/.rss"
}

// OldListingURL は旧HTMLリスティングページのURLを返す。
func (e Endpoints) OldListingURL(subreddit string) string {
	return e.oldBase() + "/r/" + url.PathEscape(subreddit) + "/new/"
}

// CommentsURL はスレッドのコメントJSONのURLを返す。
// permalink が "/" で始まる相対パスでない場合は false を返す。
func (e Endpoints) CommentsURL(permalink string) (string, bool) {
	if !strings.HasPrefix(permalink, "/") {
		return "", false
	}
	return e.base() + strings.TrimSuffix(permalink, "/") + "/.json", true
}

// PermalinkURL は相対パーマリンクを絶対URLにする。
func (e Endpoints) PermalinkURL(permalink string) string {
	return e.base() + permalink
}

// AbsoluteOld は旧HTMLページ上のリンクを絶対URLにする。
// http で始まるリンクはそのまま返す。
func (e Endpoints) AbsoluteOld(link string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	return e.oldBase() + link
}

func (e Endpoints) base() string {
	if e.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(e.BaseURL, "/")
}

func (e Endpoints) oldBase() string {
	if e.OldBaseURL == "" {
		return DefaultOldBaseURL
	}
	return strings.TrimSuffix(e.OldBaseURL, "/")
}
