package reddit

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hitoshi/redditscraper/internal/model"
)

// 上流のThing種別
const (
	KindComment = "t1"
	KindPost    = "t3"
	KindMore    = "more"
)

// PostListing は構造化リスティングのレスポンス。
type PostListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string      `json:"after"`
		Children []PostThing `json:"children"`
	} `json:"data"`
}

// PostThing はリスティングの子要素1件。
type PostThing struct {
	Kind string   `json:"kind"`
	Data PostData `json:"data"`
}

// PostData は上流の投稿データのうち使用するフィールド。
type PostData struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	Author              string  `json:"author"`
	Score               int     `json:"score"`
	UpvoteRatio         float64 `json:"upvote_ratio"`
	NumComments         int     `json:"num_comments"`
	CreatedUTC          float64 `json:"created_utc"`
	URL                 string  `json:"url"`
	Permalink           string  `json:"permalink"`
	Selftext            string  `json:"selftext"`
	IsSelf              bool    `json:"is_self"`
	LinkFlairText       string  `json:"link_flair_text"`
	Domain              string  `json:"domain"`
	Stickied            bool    `json:"stickied"`
	Over18              bool    `json:"over_18"`
	Thumbnail           string  `json:"thumbnail"`
	TotalAwardsReceived int     `json:"total_awards_received"`
}

// CommentListing はコメントエンドポイントが返す配列の要素。
// 先頭要素は投稿、2番目の要素がコメントツリー。
type CommentListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string         `json:"after"`
		Children []CommentThing `json:"children"`
	} `json:"data"`
}

// CommentThing はコメントツリーのノード。Kind が t1 以外（more など）は無視される。
type CommentThing struct {
	Kind string      `json:"kind"`
	Data CommentData `json:"data"`
}

// CommentData は上流のコメントデータのうち使用するフィールド。
type CommentData struct {
	ID                  string  `json:"id"`
	Author              string  `json:"author"`
	Body                string  `json:"body"`
	Score               int     `json:"score"`
	CreatedUTC          float64 `json:"created_utc"`
	ParentID            string  `json:"parent_id"`
	IsSubmitter         bool    `json:"is_submitter"`
	TotalAwardsReceived int     `json:"total_awards_received"`
	Replies             Replies `json:"replies"`
}

// Replies は返信のリスト。上流は返信がない場合に空文字列を返すため独自にデコードする。
type Replies []CommentThing

// UnmarshalJSON はjson.Unmarshalerを実装する。
// リスティング以外（"" や null）は返信なしとして扱う。
func (r *Replies) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*r = nil
		return nil
	}
	var listing CommentListing
	if err := json.Unmarshal(trimmed, &listing); err != nil {
		return err
	}
	*r = listing.Data.Children
	return nil
}

// CommentForest はコメントエンドポイントのレスポンスからトップレベルのコメントを取り出す。
func CommentForest(listings []CommentListing) []CommentThing {
	if len(listings) < 2 {
		return nil
	}
	return listings[1].Data.Children
}

// NormalizePost は上流の投稿データを model.Post に変換する。
// stickied または over_18 の投稿は false を返す。
func NormalizePost(d PostData, e Endpoints) (model.Post, bool) {
	if d.Stickied || d.Over18 {
		return model.Post{}, false
	}

	p := model.Post{
		ID:          d.ID,
		Title:       d.Title,
		Author:      orDefault(d.Author, model.DeletedAuthor),
		Score:       d.Score,
		UpvoteRatio: d.UpvoteRatio,
		NumComments: d.NumComments,
		CreatedUTC:  model.TimestampFromEpoch(d.CreatedUTC),
		URL:         d.URL,
		Permalink:   d.Permalink,
		Selftext:    d.Selftext,
		IsSelf:      d.IsSelf,
		Flair:       orDefault(d.LinkFlairText, model.DefaultFlair),
		Domain:      orDefault(d.Domain, model.DefaultDomain),
		Awards:      d.TotalAwardsReceived,
	}
	if p.URL == "" && p.Permalink != "" {
		p.URL = e.PermalinkURL(p.Permalink)
	}
	// "self" や "default" などのプレースホルダーは画像ではない
	if strings.HasPrefix(d.Thumbnail, "http") {
		p.Thumbnail = d.Thumbnail
	}
	return p, true
}

// NormalizeComment は上流のコメントデータを model.Comment に変換する。
func NormalizeComment(d CommentData, depth int) model.Comment {
	return model.Comment{
		ID:          d.ID,
		Author:      orDefault(d.Author, model.DeletedAuthor),
		Text:        d.Body,
		Score:       d.Score,
		CreatedUTC:  model.TimestampFromEpoch(d.CreatedUTC),
		Depth:       depth,
		ParentID:    d.ParentID,
		IsSubmitter: d.IsSubmitter,
		Awards:      d.TotalAwardsReceived,
	}
}

// IsRemovedBody は本文が空、または削除済みのプレースホルダーかを判定する。
func IsRemovedBody(body string) bool {
	return body == "" || body == "[deleted]" || body == "[removed]"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
