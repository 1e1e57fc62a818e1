package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// TimestampLayout はAPIレスポンスで使用するISO-8601形式（UTC、ミリ秒精度）。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout は日単位の集計キーおよびリクエストの日付形式。
const DateLayout = "2006-01-02"

// Timestamp はJSONで常にUTCのISO-8601文字列として表現される時刻。
type Timestamp struct {
	time.Time
}

// NewTimestamp はtをUTCに正規化したTimestampを返す。
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// TimestampFromEpoch はエポック秒（小数可）からTimestampを生成する。
func TimestampFromEpoch(sec float64) Timestamp {
	ms := int64(math.Round(sec * 1000))
	return NewTimestamp(time.UnixMilli(ms))
}

// String はTimestampLayout形式の文字列を返す。
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// Date はUTCの日付（YYYY-MM-DD）を返す。
func (t Timestamp) Date() string {
	return t.UTC().Format(DateLayout)
}

// MarshalJSON はjson.Marshalerを実装する。
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
// RFC3339形式の文字列を受け付ける。
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}
