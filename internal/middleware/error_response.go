package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorResponseBody はAPIエラーレスポンスの形式。
type ErrorResponseBody struct {
	Error string `json:"error"`
}

// WriteJSONError は {"error": message} 形式のエラーレスポンスを書き込む。
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: message})
}

// WriteInternalServerError は内部サーバーエラーのレスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteJSONError(w, http.StatusInternalServerError, "internal server error")
}
