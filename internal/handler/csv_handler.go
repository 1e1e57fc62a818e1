package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/redditscraper/internal/export"
	"github.com/hitoshi/redditscraper/internal/middleware"
)

// CSVHandler は POST /download-csv を処理する。
type CSVHandler struct {
	logger *slog.Logger
}

// NewCSVHandler はCSVHandlerを生成する。
func NewCSVHandler(logger *slog.Logger) *CSVHandler {
	return &CSVHandler{logger: logger}
}

// DownloadCSV は取得済みの投稿・コメントをCSV文字列に変換して返す。
// POST /download-csv
func (h *CSVHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	var req downloadCSVRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err == nil {
		decodeLenient(body, &req)
	}

	posts, err := export.DecodeRecords(req.Posts)
	if err != nil {
		h.fail(w, r, "posts", err)
		return
	}
	comments, err := export.DecodeRecords(req.Comments)
	if err != nil {
		h.fail(w, r, "comments", err)
		return
	}

	writeJSON(w, http.StatusOK, downloadCSVResponse{
		PostsCSV:    export.ToCSV(posts, export.PostColumns),
		CommentsCSV: export.ToCSV(comments, export.CommentColumns),
	})
}

func (h *CSVHandler) fail(w http.ResponseWriter, r *http.Request, field string, err error) {
	h.logger.Warn("csv conversion failed",
		slog.String("field", field),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	middleware.WriteJSONError(w, http.StatusInternalServerError, field+" must be an array of objects: "+err.Error())
}
