// VulnSentinel monitors upstream open-source libraries for security fixes,
// classifies and analyzes them via LLM, and fans out verified findings to
// the client projects that depend on the affected code.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vulnsentinel/vulnsentinel/pkg/config"
	"github.com/vulnsentinel/vulnsentinel/pkg/cursor"
	"github.com/vulnsentinel/vulnsentinel/pkg/database"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/analyzer"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/classifier"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/collector"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/impact"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/notification"
	"github.com/vulnsentinel/vulnsentinel/pkg/engines/reachability"
	scannerengine "github.com/vulnsentinel/vulnsentinel/pkg/engines/scanner"
	"github.com/vulnsentinel/vulnsentinel/pkg/githubapi"
	"github.com/vulnsentinel/vulnsentinel/pkg/llm"
	"github.com/vulnsentinel/vulnsentinel/pkg/logging"
	"github.com/vulnsentinel/vulnsentinel/pkg/notifier"
	pkgscanner "github.com/vulnsentinel/vulnsentinel/pkg/scanner"
	"github.com/vulnsentinel/vulnsentinel/pkg/scheduler"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
	"github.com/vulnsentinel/vulnsentinel/pkg/slack"
	"github.com/vulnsentinel/vulnsentinel/pkg/staticanalysis"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logging.Init(getEnv("LOG_DEBUG", "") == "true")
	logger := logging.Logger("vulnsentinel.main")

	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		logger.Warn("could not load .env, continuing with existing environment variables", "path", envPath, "error", err)
	} else {
		logger.Info("loaded environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "debug"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting VulnSentinel", "config_dir", *configDir)

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		logger.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	stats := cfg.Stats()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load database config", "error", err)
		os.Exit(1)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logger.Error("error closing database client", "error", err)
		}
	}()
	logger.Info("connected to PostgreSQL database")

	cursorKey := cursor.Key(os.Getenv(cfg.CursorSecretEnv))

	projects := services.NewProjectService(dbClient.Client, cursorKey)
	libraries := services.NewLibraryService(dbClient.Client, cursorKey)
	projectDeps := services.NewProjectDependencyService(dbClient.Client, cursorKey)
	events := services.NewEventService(dbClient.Client, cursorKey)
	upstreamVulns := services.NewUpstreamVulnService(dbClient.Client, cursorKey)
	clientVulns := services.NewClientVulnService(dbClient.Client, cursorKey)
	agentRuns := services.NewAgentRunService(dbClient.Client, cursorKey)

	llmClient := llm.NewClient(30 * time.Second)
	ghClient := githubapi.NewClient(os.Getenv(cfg.GitHub.TokenEnv))

	var collaborator staticanalysis.Client = staticanalysis.NoOpClient{}
	if httpCollaborator := staticanalysis.NewHTTPClientFromEnv(); httpCollaborator != nil {
		collaborator = httpCollaborator
		logger.Info("reachability collaborator configured")
	} else {
		logger.Info("no reachability collaborator configured, reachability checks stay pending", "reason", "STATIC_ANALYSIS_URL unset")
	}

	var channel notifier.Channel = slack.NewService(slack.ServiceConfig{
		Token:        os.Getenv("SLACK_TOKEN"),
		Channel:      os.Getenv("SLACK_CHANNEL"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),
	})

	// Wake chain: Scanner -> Collector -> Classifier -> Analyzer -> Impact ->
	// Reachability -> Notification (spec.md §4.9).
	wakeCollector := scheduler.NewWakeChan()
	wakeClassifier := scheduler.NewWakeChan()
	wakeAnalyzer := scheduler.NewWakeChan()
	wakeImpact := scheduler.NewWakeChan()
	wakeReachability := scheduler.NewWakeChan()
	wakeNotification := scheduler.NewWakeChan()

	scannerRunner := scannerengine.NewRunner(projects, projectDeps, libraries, pkgscanner.NewRegistry(), cfg.Intervals.ScanFreshnessWindow)
	collectorRunner := collector.NewRunner(libraries, events, ghClient, cfg.Intervals.CollectorConcurrency, cfg.Intervals.CollectFreshnessWindow)
	classifierRunner := classifier.NewRunner(events, libraries, agentRuns, llmClient, ghClient, cfg.Intervals.ClassifierConcurrency)
	analyzerRunner := analyzer.NewRunner(events, libraries, upstreamVulns, agentRuns, llmClient, ghClient, cfg.Intervals.AnalyzerConcurrency)
	impactRunner := impact.NewRunner(upstreamVulns, projectDeps, clientVulns)
	reachabilityRunner := reachability.NewRunner(clientVulns, upstreamVulns, projects, libraries, collaborator, cfg.Intervals.ReachabilityConcurrency)
	notificationRunner := notification.NewRunner(clientVulns, upstreamVulns, projects, libraries, channel, getEnv("DASHBOARD_URL", "http://localhost:3000"))

	sched := scheduler.New(
		scheduler.NewEngineLoop("scanner", scannerRunner.Run, cfg.Intervals.Scan, nil, wakeCollector),
		scheduler.NewEngineLoop("collector", collectorRunner.Run, cfg.Intervals.Collect, wakeCollector, wakeClassifier),
		scheduler.NewEngineLoop("classifier", classifierRunner.Run, cfg.Intervals.Classify, wakeClassifier, wakeAnalyzer),
		scheduler.NewEngineLoop("analyzer", analyzerRunner.Run, cfg.Intervals.Analyze, wakeAnalyzer, wakeImpact),
		scheduler.NewEngineLoop("impact", impactRunner.Run, cfg.Intervals.Impact, wakeImpact, wakeReachability),
		scheduler.NewEngineLoop("reachability", reachabilityRunner.Run, cfg.Intervals.Reachability, wakeReachability, wakeNotification),
		scheduler.NewEngineLoop("notification", notificationRunner.Run, cfg.Intervals.Notify, wakeNotification, nil),
	)
	sched.Start(ctx)
	defer sched.Stop()
	logger.Info("engine scheduler started")

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbHealth, err := database.Health(reqCtx, dbClient.DB())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": dbHealth, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": dbHealth,
			"configuration": gin.H{
				"scan_interval":    stats.ScanInterval,
				"collect_interval": stats.CollectInterval,
				"classify_model":   stats.ClassifyModel,
				"analyze_model":    stats.AnalyzeModel,
			},
		})
	})

	srv := &http.Server{Addr: ":" + httpPort, Handler: router}
	go func() {
		logger.Info("HTTP server listening", "port", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
}
