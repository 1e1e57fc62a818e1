// Package upstream は上流コンテンツソースへのHTTPアクセスを抽象化する。
// アダプタは Fetcher インターフェースだけに依存し、テストでは差し替えられる。
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/redditscraper/internal/model"
)

// Response は上流レスポンスのステータスとボディ。
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher はURLとヘッダーを受け取りステータスとボディを返す。
// 2xx以外のステータスはエラーではなくResponseとして返す。
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header) (*Response, error)
}

// MetricsRecorder は上流呼び出しのメトリクス記録先。
type MetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordFetchFailure(reason string)
}

// Options はHTTPFetcherの設定。
type Options struct {
	UserAgent   string
	MaxBodySize int64
	// RateLimit は1秒あたりの最大リクエスト数。0以下は無制限。
	RateLimit float64
	Burst     int
}

// HTTPFetcher はnet/httpによるFetcherの実装。
// 全リクエストに共通のUser-Agentを付与し、ボディサイズを制限する。
type HTTPFetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxBodySize int64
	metrics     MetricsRecorder
	logger      *slog.Logger
}

// NewHTTPFetcher はHTTPFetcherの新しいインスタンスを生成する。
// metrics が nil の場合はメトリクスを記録しない。
func NewHTTPFetcher(client *http.Client, opts Options, metrics MetricsRecorder, logger *slog.Logger) *HTTPFetcher {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = math.MaxInt64
	}
	return &HTTPFetcher{
		client:      client,
		limiter:     rate.NewLimiter(limit, burst),
		userAgent:   opts.UserAgent,
		maxBodySize: maxBody,
		metrics:     metrics,
		logger:      logger,
	}
}

// Fetch はGETリクエストを送信する。
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.recordFailure("transport")
		return nil, fmt.Errorf("HTTPリクエスト失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	duration := time.Since(start)
	if err != nil {
		f.recordFailure("read_body")
		return nil, fmt.Errorf("レスポンス読み取り失敗: %w", err)
	}

	if f.metrics != nil {
		f.metrics.RecordHTTPStatus(resp.StatusCode)
		f.metrics.RecordFetchLatency(duration)
	}

	f.logger.Debug("upstream fetch completed",
		slog.String("url", rawURL),
		slog.Int("http_status", resp.StatusCode),
		slog.String("status_class", ClassifyHTTPStatus(resp.StatusCode).String()),
		slog.Int("body_bytes", len(body)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (f *HTTPFetcher) recordFailure(reason string) {
	if f.metrics != nil {
		f.metrics.RecordFetchFailure(reason)
	}
}

// GetBody はURLを取得し、200以外のステータスをエラーとして扱う。
// 返すエラーは *model.APIError でラップされている。
func GetBody(ctx context.Context, f Fetcher, rawURL string, header http.Header) ([]byte, error) {
	resp, err := f.Fetch(ctx, rawURL, header)
	if err != nil {
		return nil, model.NewFetchFailedError(rawURL, err)
	}
	if ClassifyHTTPStatus(resp.StatusCode) != StatusOK {
		return nil, model.NewUpstreamStatusError(rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// GetJSON はURLを取得し、ボディをvにデコードする。
func GetJSON(ctx context.Context, f Fetcher, rawURL string, header http.Header, v any) error {
	body, err := GetBody(ctx, f, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return model.NewParseFailedError(rawURL, err)
	}
	return nil
}
