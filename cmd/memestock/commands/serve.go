package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/memestock/internal/api"
	"github.com/wonny/memestock/internal/api/handlers"
	"github.com/wonny/memestock/internal/metrics"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "스케줄러 + API 서버 시작",
	Long: `갱신 스케줄러와 HTTP API 서버를 함께 시작합니다.

Jobs:
  refresh              - REFRESH_INTERVAL 마다 (기본 5m)
  forum_discovery      - DISCOVERY_INTERVAL 마다 (기본 168h)
  quote_cache_cleanup  - 매시간

Endpoints:
  GET  /health          - Health check
  GET  /api/snapshot    - 최신 스냅샷
  GET  /api/metrics     - 표시용 메트릭 (?top=N)
  GET  /api/quota       - 가격 제공자 쿼터
  GET  /api/forums      - 스캔 대상 포럼
  GET  /api/jobs        - 스케줄러 통계
  POST /api/refresh     - 즉시 갱신
  GET  /ws/snapshot     - 스냅샷 스트림
  GET  /metrics         - Prometheus

Example:
  go run ./cmd/memestock serve
  go run ./cmd/memestock serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	// 1. Subscribers: websocket hub, prometheus exporter
	hub := api.NewHub(eng.orchestrator, log)
	eng.orchestrator.OnPublish(hub.Publish)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		exporter := metrics.New()
		eng.orchestrator.OnPublish(exporter.Observe)
		metricsHandler = exporter.Handler()
	}

	// 2. Scheduler
	sched := scheduler.New(log)
	refreshJob := jobs.NewRefreshJob(eng.orchestrator, cfg.Insight.RefreshInterval, log)
	for _, job := range []scheduler.Job{
		refreshJob,
		jobs.NewDiscoveryJob(eng.discoverer, cfg.Insight.DiscoveryInterval, log),
		jobs.NewCacheCleanupJob(eng.ladder.Cache(), log),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job: %w", err)
		}
	}

	// 3. API
	router := api.NewRouter(api.Routes{
		Insight: handlers.NewInsightHandler(eng.orchestrator, sched, refreshJob.Name(), cfg.Insight.TopN, log),
		Status:  handlers.NewStatusHandler(eng.ladder, eng.forums, sched, log),
		Hub:     hub,
		Metrics: metricsHandler,
	}, log)
	server := api.New(cfg, log, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 4. Cold start: publish without calling out, then refresh off the hot path
	if cfg.Insight.SkipColdStart {
		eng.orchestrator.Refresh(ctx)
	}
	sched.Start()
	if err := sched.RunJob(refreshJob.Name()); err != nil {
		log.WithError(err).Warn("Initial refresh not started")
	}

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"forums":   eng.forums.Forums(),
		"interval": cfg.Insight.RefreshInterval.String(),
		"store":    cfg.Store.Backend,
	}).Info("memestock serving")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-serverErr:
		if runErr != nil {
			log.WithError(runErr).Error("API server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
	}
	hub.Close()
	sched.Stop()

	last := eng.orchestrator.Latest()
	log.WithFields(map[string]interface{}{
		"last_status": last.Status,
		"first_cycle": eng.orchestrator.HasCompletedFirstSuccessfulCycle(),
	}).Info("Stopped")

	return runErr
}
