// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/stockwatch/internal/config"
	"github.com/hitoshi/stockwatch/internal/extract"
	"github.com/hitoshi/stockwatch/internal/fetcher"
	"github.com/hitoshi/stockwatch/internal/handler"
	"github.com/hitoshi/stockwatch/internal/link"
	"github.com/hitoshi/stockwatch/internal/logger"
	"github.com/hitoshi/stockwatch/internal/metrics"
	"github.com/hitoshi/stockwatch/internal/notify"
	"github.com/hitoshi/stockwatch/internal/registry"
	"github.com/hitoshi/stockwatch/internal/security"
	"github.com/hitoshi/stockwatch/internal/worker/monitor"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

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

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("links_file", cfg.LinksFile),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandCheck:
		return runCheck(cfg)
	case CommandServe:
		return runServe(cfg)
	default:
		return runServe(cfg)
	}
}

// deps は全モードで共有する依存関係一式。
type deps struct {
	registry *registry.Registry
	linkSvc  *link.Service
	cycle    *monitor.Cycle
	notifier *notify.TelegramClient
	reg      *prometheus.Registry
}

// buildDeps はレジストリ読み込みと依存関係のワイヤリングを行う。
func buildDeps(cfg *config.Config) (*deps, error) {
	// 1. リンクレジストリの読み込み
	reg := registry.NewRegistry(cfg.LinksFile, slog.Default())
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load link registry: %w", err)
	}

	// 2. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()

	// 3. チェッカーの構築
	pageFetcher := fetcher.NewFetcher(ssrfGuard, slog.Default(), cfg.FetchTimeout, cfg.FetchMaxSize)
	extractor := extract.NewExtractor(sanitizer)
	checker := monitor.NewChecker(pageFetcher, extractor)

	// 4. メトリクスの初期化
	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector(promReg)

	// 5. サービス層の構築
	linkSvc := link.NewService(reg, checker, slog.Default())
	cycle := monitor.NewCycle(reg, checker, collector, slog.Default(), cfg.CheckDelay)

	// 6. 通知クライアントの構築
	notifier := notify.NewTelegramClient(
		&http.Client{Timeout: 10 * time.Second},
		slog.Default(),
		cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramChatID,
	)

	return &deps{
		registry: reg,
		linkSvc:  linkSvc,
		cycle:    cycle,
		notifier: notifier,
		reg:      promReg,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:      slog.Default(),
		LinkService: d.linkSvc,
		CheckRunner: d.cycle,
		Gatherer:    d.reg,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker は監視ワーカーモードで起動する。
// 一定間隔でチェックサイクルを繰り返し、変化を通知する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	runner := monitor.NewRunner(d.cycle, d.notifier, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	// サイクルランナーをメインgoroutineで実行（ブロッキング）
	runner.Start(ctx, cfg.CheckInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runCheck はチェックサイクルを1回だけ実行して終了する。
// cron等の外部スケジューラから呼び出すモード。
func runCheck(cfg *config.Config) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	if d.registry.Len() == 0 {
		slog.Info("監視対象のリンクがありません")
		return nil
	}

	runner := monitor.NewRunner(d.cycle, d.notifier, slog.Default())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner.RunOnce(ctx)
	return nil
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
