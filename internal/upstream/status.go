package upstream

// StatusClass はHTTPステータスコードの分類。
type StatusClass int

const (
	// StatusOK は成功（2xx）。
	StatusOK StatusClass = iota
	// StatusThrottled はレート制限（429）。
	StatusThrottled
	// StatusNotFound は存在しないか非公開（403/404/410）。
	StatusNotFound
	// StatusServerError は上流の障害（5xx）。
	StatusServerError
	// StatusUnknown はその他のステータスコード。
	StatusUnknown
)

// ClassifyHTTPStatus はHTTPステータスコードを分類する。
// いずれの失敗も呼び出し側では空の結果として扱われ、分類はログとメトリクスにのみ使う。
func ClassifyHTTPStatus(statusCode int) StatusClass {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusOK
	case statusCode == 429:
		return StatusThrottled
	case statusCode == 403 || statusCode == 404 || statusCode == 410:
		return StatusNotFound
	case statusCode >= 500:
		return StatusServerError
	default:
		return StatusUnknown
	}
}

// String はログ出力用の名前を返す。
func (c StatusClass) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusThrottled:
		return "throttled"
	case StatusNotFound:
		return "not_found"
	case StatusServerError:
		return "server_error"
	default:
		return "unknown"
	}
}
