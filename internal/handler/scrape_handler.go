package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/redditscraper/internal/middleware"
	"github.com/hitoshi/redditscraper/internal/model"
)

// maxRequestBodySize はリクエストボディの上限（CSV変換の入力を含む）。
const maxRequestBodySize = 20 << 20

// ScrapeServiceInterface はスクレイプハンドラーが必要とするサービスインターフェース。
type ScrapeServiceInterface interface {
	Scrape(ctx context.Context, params model.ScrapeParams) (*model.Result, error)
}

// ScrapeDefaults はリクエストで省略された値の既定値と上限。
type ScrapeDefaults struct {
	Subreddit          string
	PostLimit          int
	MaxPostLimit       int
	CommentsPerPost    int
	MaxCommentsPerPost int
}

// ScrapeHandler は POST /scrape を処理する。
type ScrapeHandler struct {
	service  ScrapeServiceInterface
	defaults ScrapeDefaults
	logger   *slog.Logger
}

// NewScrapeHandler はScrapeHandlerを生成する。
func NewScrapeHandler(service ScrapeServiceInterface, defaults ScrapeDefaults, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{service: service, defaults: defaults, logger: logger}
}

// Scrape は投稿とコメントを取得して返す。
// POST /scrape
func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	requestID := middleware.RequestIDFromContext(r.Context())
	if err == nil {
		ignored, ok := decodeLenient(body, &req)
		switch {
		case !ok:
			h.logger.Debug("scrape request body not parsable, using defaults",
				slog.String("request_id", requestID),
			)
		case len(ignored) > 0:
			h.logger.Warn("ignoring mistyped request fields",
				slog.Any("fields", ignored),
				slog.String("request_id", requestID),
			)
		}
	}

	params := h.buildParams(req)

	result, err := h.service.Scrape(r.Context(), params)
	if err != nil {
		h.logger.Error("scrape failed",
			slog.String("subreddit", params.Subreddit),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		middleware.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// buildParams はリクエストに既定値と上限を適用してスクレイプ条件にする。
func (h *ScrapeHandler) buildParams(req scrapeRequest) model.ScrapeParams {
	subreddit := strings.TrimSpace(req.Subreddit)
	if subreddit == "" {
		subreddit = h.defaults.Subreddit
	}

	start := h.parseDate("startDate", req.StartDate)
	end := h.parseDate("endDate", req.EndDate)

	return model.ScrapeParams{
		Subreddit:       subreddit,
		Limit:           clamp(int(req.Limit), h.defaults.PostLimit, h.defaults.MaxPostLimit),
		CommentsPerPost: clamp(int(req.CommentsPerPost), h.defaults.CommentsPerPost, h.defaults.MaxCommentsPerPost),
		Sort:            req.SortBy,
		TimeFilter:      req.TimeFilter,
		DateRange:       model.DateRange{Start: start, End: end},
		Filtered:        req.SortBy != "" || req.TimeFilter != "" || req.StartDate != "" || req.EndDate != "",
	}
}

// parseDate はYYYY-MM-DD形式の日付をUTCの0時として解釈する。
// 空または不正な値はnilを返し、不正な場合は警告を記録する。
func (h *ScrapeHandler) parseDate(field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		h.logger.Warn("ignoring invalid date",
			slog.String("field", field),
			slog.String("value", value),
		)
		return nil
	}
	return &t
}

// clamp は0以下の値を既定値に置き換え、上限で切り詰める。
func clamp(v, def, ceiling int) int {
	if v <= 0 {
		v = def
	}
	if ceiling > 0 && v > ceiling {
		v = ceiling
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
