package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/hitoshi/redditscraper/internal/config"
	"github.com/hitoshi/redditscraper/internal/logger"
	"github.com/hitoshi/redditscraper/internal/model"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで作り直す
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	// scrape は結果をwに出力するため、ログは標準エラーに分ける
	logOut := w
	if cmd == CommandScrape {
		logOut = os.Stderr
	}

	cfg, err := Init(logOut)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("parse_mode", cfg.ParseMode),
		slog.String("reddit_base_url", cfg.RedditBaseURL),
	)

	comps, err := Build(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build components: %w", err)
	}

	switch cmd {
	case CommandScrape:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runScrape(ctx, w, comps, args[1:])
	default:
		return runServe(cfg, comps.Router)
	}
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, router http.Handler) error {
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// 1リクエストで最大 limit 件分のコメント取得が直列に走る
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runScrape は1回スクレイプし、結果をインデント付きJSONでwに書き出す。
//
//	scrape [subreddit] [--limit N] [--comments N] [--sort new|hot|top|rising]
//	       [--time hour|day|week|month|year|all] [--start YYYY-MM-DD] [--end YYYY-MM-DD]
func runScrape(ctx context.Context, w io.Writer, comps *Components, args []string) error {
	params, err := parseScrapeArgs(comps, args)
	if err != nil {
		return err
	}

	result, err := comps.Service.Scrape(ctx, params)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// parseScrapeArgs はscrapeサブコマンドの引数をスクレイプ条件に変換する。
// 件数はサーバーと同じ既定値と上限に従う。日付が不正な場合はエラーを返す。
func parseScrapeArgs(comps *Components, args []string) (model.ScrapeParams, error) {
	defaults := comps.Defaults

	fs := pflag.NewFlagSet("scrape", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.IntP("limit", "n", defaults.PostLimit, "number of posts")
	comments := fs.IntP("comments", "c", defaults.CommentsPerPost, "comments per post")
	sortBy := fs.String("sort", "", "listing order (new, hot, top, rising)")
	timeFilter := fs.String("time", "", "time window for top (hour, day, week, month, year, all)")
	startDate := fs.String("start", "", "earliest post date (YYYY-MM-DD)")
	endDate := fs.String("end", "", "latest post date (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		return model.ScrapeParams{}, fmt.Errorf("invalid scrape arguments: %w", err)
	}

	subreddit := defaults.Subreddit
	if fs.NArg() > 0 && strings.TrimSpace(fs.Arg(0)) != "" {
		subreddit = strings.TrimSpace(fs.Arg(0))
	}

	start, err := parseDateFlag("start", *startDate)
	if err != nil {
		return model.ScrapeParams{}, err
	}
	end, err := parseDateFlag("end", *endDate)
	if err != nil {
		return model.ScrapeParams{}, err
	}

	return model.ScrapeParams{
		Subreddit:       subreddit,
		Limit:           boundCount(*limit, defaults.PostLimit, defaults.MaxPostLimit),
		CommentsPerPost: boundCount(*comments, defaults.CommentsPerPost, defaults.MaxCommentsPerPost),
		Sort:            *sortBy,
		TimeFilter:      *timeFilter,
		DateRange:       model.DateRange{Start: start, End: end},
		Filtered:        *sortBy != "" || *timeFilter != "" || *startDate != "" || *endDate != "",
	}, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return &t, nil
}

func boundCount(v, def, ceiling int) int {
	if v <= 0 {
		return def
	}
	return min(v, ceiling)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
