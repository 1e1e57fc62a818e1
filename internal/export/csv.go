// Package export は取得済みの投稿・コメントをCSVに変換する。
package export

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// PostColumns は投稿CSVの列。
var PostColumns = []string{
	"id", "title", "author", "score", "upvote_ratio", "num_comments", "created_utc",
	"url", "permalink", "selftext", "is_self", "flair", "domain",
}

// CommentColumns はコメントCSVの列。
var CommentColumns = []string{
	"id", "post_title", "post_url", "post_id", "author", "text", "score",
	"created_utc", "depth", "parent_id", "is_submitter",
}

// Record はクライアントから受け取った1行分のオブジェクト。
type Record = map[string]any

// ToCSV はrecordsをcolumnsの順でCSVに変換する。
// ヘッダー行は引用符なし、データ行は全フィールドを二重引用符で囲む。各行は改行で終わる。
// レコードが空の場合は空文字列を返す。
func ToCSV(records []Record, columns []string) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteByte('\n')

	for _, rec := range records {
		for i, col := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cellText(rec[col]), `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeRecords はJSON配列をレコードのスライスにデコードする。
// 数値は表記を保つため json.Number として保持する。
func DecodeRecords(raw json.RawMessage) ([]Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			rec = Record{}
		}
		records = append(records, rec)
	}
	return records, nil
}

// cellText は値をセル文字列に変換する。偽とみなす値（nil・false・0・空文字列）は空になる。
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return ""
		}
		return val.String()
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		if val == 0 {
			return ""
		}
		return strconv.Itoa(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
