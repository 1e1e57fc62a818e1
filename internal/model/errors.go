package model

import (
	"fmt"
	"log/slog"
)

// APIError はエラーの原因カテゴリと対処方法を含む統一フォーマット。
// 上流呼び出しの失敗はログの文脈として使い、クライアントには返さない。
// slog.Any で渡すと全フィールドがグループとして出力される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: 現状は upstream のみ
	Action   string // 対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// LogValue はslog.LogValuerを実装する。
func (e *APIError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("code", e.Code),
		slog.String("message", e.Message),
		slog.String("category", e.Category),
		slog.String("action", e.Action),
	)
}

// 定義済みエラーコード
const (
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeUpstreamStatus = "UPSTREAM_STATUS"
	ErrCodeParseFailed    = "PARSE_FAILED"
)

// NewFetchFailedError はフェッチ失敗エラーを生成する。
func NewFetchFailedError(url string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("URLの取得に失敗しました: %s: %v", url, cause),
		Category: "upstream",
		Action:   "ネットワーク接続と上流サービスの状態を確認してください。",
	}
}

// NewUpstreamStatusError は上流が成功以外のステータスを返した場合のエラーを生成する。
func NewUpstreamStatusError(url string, status int) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamStatus,
		Message:  fmt.Sprintf("上流がステータス %d を返しました: %s", status, url),
		Category: "upstream",
		Action:   "レート制限やサブレディット名の誤りが考えられます。しばらく待ってから再度お試しください。",
	}
}

// NewParseFailedError はレスポンスの解析失敗エラーを生成する。
func NewParseFailedError(url string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeParseFailed,
		Message:  fmt.Sprintf("レスポンスの解析に失敗しました: %s: %v", url, cause),
		Category: "upstream",
		Action:   "上流のレスポンス形式が変わっていないか確認してください。",
	}
}
