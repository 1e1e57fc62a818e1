package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// flexInt は数値または数値文字列のどちらでも受け付ける整数。
// 解釈できない値は0として扱い、エラーにしない。
type flexInt int

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (n *flexInt) UnmarshalJSON(data []byte) error {
	*n = 0
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var raw string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(trimmed)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f > math.MaxInt32 {
		f = math.MaxInt32
	}
	*n = flexInt(f)
	return nil
}

// scrapeRequest は POST /scrape のリクエストボディ。
type scrapeRequest struct {
	Subreddit       string  `json:"subreddit"`
	Limit           flexInt `json:"limit"`
	CommentsPerPost flexInt `json:"commentsPerPost"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	SortBy          string  `json:"sortBy"`
	TimeFilter      string  `json:"timeFilter"`
}

// downloadCSVRequest は POST /download-csv のリクエストボディ。
// 各レコードは任意のオブジェクトのため、配列のまま受け取る。
type downloadCSVRequest struct {
	Posts    json.RawMessage `json:"posts"`
	Comments json.RawMessage `json:"comments"`
}

// downloadCSVResponse は POST /download-csv のレスポンス。
type downloadCSVResponse struct {
	PostsCSV    string `json:"postsCSV"`
	CommentsCSV string `json:"commentsCSV"`
}

// decodeLenient はJSONオブジェクトのボディをvの各フィールドへ個別にデコードする。
// 型の合わないフィールドはゼロ値に戻して名前をignoredに返し、他のフィールドはそのまま使う。
// ボディがJSONオブジェクトとして解析できない場合はvをゼロ値にしてokにfalseを返す。
// Tはjsonタグ付きの構造体であること。
func decodeLenient[T any](body []byte, v *T) (ignored []string, ok bool) {
	var zero T
	*v = zero

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}

	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if !sf.IsExported() || name == "" || name == "-" {
			continue
		}
		raw, found := lookupField(fields, name)
		if !found {
			continue
		}
		fv := rv.Field(i)
		if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
			fv.SetZero()
			ignored = append(ignored, name)
		}
	}
	return ignored, true
}

// lookupField はencoding/jsonと同じく、完全一致がなければ大文字小文字を無視してキーを探す。
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for key, raw := range fields {
		if strings.EqualFold(key, name) {
			return raw, true
		}
	}
	return nil, false
}
