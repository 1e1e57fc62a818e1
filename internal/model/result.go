package model

import (
	"encoding/json"
	"time"
)

// NoLimit は日付範囲の片側が指定されていないことを示すマーカー。
const NoLimit = "no limit"

// Result は1回のスクレイプで得られた集計結果。
type Result struct {
	Posts      []Post         `json:"posts"`
	Comments   []Comment      `json:"comments"`
	DailyStats map[string]int `json:"dailyStats"`
	Stats      Stats          `json:"stats"`
}

// Stats はスクレイプ結果のサマリ。
type Stats struct {
	TotalPosts    int       `json:"totalPosts"`
	TotalComments int       `json:"totalComments"`
	SortBy        string    `json:"sortBy"`
	TimeFilter    string    `json:"timeFilter"`
	DateRange     DateRange `json:"dateRange"`
	Source        string    `json:"source"`
	ScrapedAt     Timestamp `json:"scrapedAt"`
}

// DateRange はリクエストされた日付範囲（両端を含む）。
// nil の境界は NoLimit として出力される。
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Active は少なくとも片側の境界が指定されているかを返す。
func (d DateRange) Active() bool {
	return d.Start != nil || d.End != nil
}

// Contains はtが範囲内（両端を含む）かを判定する。
// Startはその日の00:00:00 UTC、Endはその日の23:59:59 UTCとして扱う。
func (d DateRange) Contains(t time.Time) bool {
	if d.Start != nil && t.Before(*d.Start) {
		return false
	}
	if d.End != nil && t.After(d.End.Add(24*time.Hour-time.Second)) {
		return false
	}
	return true
}

// MarshalJSON はjson.Marshalerを実装する。
func (d DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"start": formatBound(d.Start),
		"end":   formatBound(d.End),
	})
}

func formatBound(t *time.Time) string {
	if t == nil {
		return NoLimit
	}
	return t.UTC().Format(DateLayout)
}
