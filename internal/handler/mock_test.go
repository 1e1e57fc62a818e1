package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/hitoshi/redditscraper/internal/model"
)

// mockScrapeService はScrapeServiceInterfaceのテスト用実装。
type mockScrapeService struct {
	mu       sync.Mutex
	scrapeFn func(ctx context.Context, params model.ScrapeParams) (*model.Result, error)
	calls    []model.ScrapeParams
}

func (m *mockScrapeService) Scrape(ctx context.Context, params model.ScrapeParams) (*model.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	m.mu.Unlock()
	if m.scrapeFn != nil {
		return m.scrapeFn(ctx, params)
	}
	return &model.Result{
		Posts:      []model.Post{},
		Comments:   []model.Comment{},
		DailyStats: map[string]int{},
		Stats:      model.Stats{SortBy: "new", TimeFilter: "all", Source: "none"},
	}, nil
}

func (m *mockScrapeService) lastCall() model.ScrapeParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return model.ScrapeParams{}
	}
	return m.calls[len(m.calls)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testDefaults() ScrapeDefaults {
	return ScrapeDefaults{
		Subreddit:          "Overwatch",
		PostLimit:          10,
		MaxPostLimit:       50,
		CommentsPerPost:    20,
		MaxCommentsPerPost: 50,
	}
}

// panickingService はScrapeで必ずpanicする。
type panickingService struct{}

func (panickingService) Scrape(context.Context, model.ScrapeParams) (*model.Result, error) {
	panic("unexpected upstream shape")
}
