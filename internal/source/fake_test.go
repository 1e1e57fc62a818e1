package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hitoshi/redditscraper/internal/upstream"
)

// fakeFetcher はURLごとに固定のレスポンスを返すFetcher。
// 登録されていないURLには404を返す。
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*upstream.Response
	failures  map[string]error
	requests  []string
	headers   []http.Header
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: map[string]*upstream.Response{},
		failures:  map[string]error{},
	}
}

func (f *fakeFetcher) respond(url string, status int, body string) {
	f.responses[url] = &upstream.Response{StatusCode: status, Body: []byte(body)}
}

func (f *fakeFetcher) fail(url string) {
	f.failures[url] = errors.New("connection refused")
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, header http.Header) (*upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, rawURL)
	f.headers = append(f.headers, header)
	if err, ok := f.failures[rawURL]; ok {
		return nil, err
	}
	if resp, ok := f.responses[rawURL]; ok {
		return resp, nil
	}
	return &upstream.Response{StatusCode: http.StatusNotFound}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
