package model

// ScrapeParams はリクエストを正規化したスクレイプ条件。
// デフォルト値の適用と上限のクランプはハンドラーで済ませてから渡す。
type ScrapeParams struct {
	Subreddit       string
	Limit           int
	CommentsPerPost int
	Sort            string
	TimeFilter      string
	DateRange       DateRange
	// Filtered はソート・期間・日付のいずれかが指定されたことを示す。
	// true の場合はページネーション取得を使用する。
	Filtered bool
}
