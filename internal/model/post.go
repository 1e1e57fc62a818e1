// Package model はドメインモデルを定義する。
package model

// 欠損値のデフォルト
const (
	DeletedAuthor = "[deleted]"
	UnknownAuthor = "[unknown]"
	DefaultFlair  = "N/A"
	DefaultDomain = "reddit.com"
)

// Post はサブレディットの投稿1件を正規化したもの。
// どのソースから取得しても同じ形に揃える。stickied/over_18の投稿は含まれない。
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvote_ratio"`
	NumComments int       `json:"num_comments"`
	CreatedUTC  Timestamp `json:"created_utc"`
	URL         string    `json:"url"`
	Permalink   string    `json:"permalink"`
	Selftext    string    `json:"selftext"`
	IsSelf      bool      `json:"is_self"`
	Flair       string    `json:"flair"`
	Domain      string    `json:"domain"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Awards      int       `json:"awards,omitempty"`
}

// Comment はスレッド内のコメント1件を正規化したもの。
// PostTitle以降のフィールドはオーケストレータが親投稿からコピーする。
type Comment struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Score       int       `json:"score"`
	CreatedUTC  Timestamp `json:"created_utc"`
	Depth       int       `json:"depth"`
	ParentID    string    `json:"parent_id"`
	IsSubmitter bool      `json:"is_submitter"`
	Awards      int       `json:"awards,omitempty"`

	PostTitle string `json:"post_title"`
	PostURL   string `json:"post_url"`
	PostID    string `json:"post_id"`
	PostDate  string `json:"post_date,omitempty"`
}

// AttachPost は親投稿の情報をコメントにコピーする。
// withDate が true の場合は投稿日（UTC）も付与する。
func (c *Comment) AttachPost(p Post, withDate bool) {
	c.PostTitle = p.Title
	c.PostURL = p.URL
	c.PostID = p.ID
	if withDate {
		c.PostDate = p.CreatedUTC.Date()
	}
}
