// Command auditd runs the quality audit service: audit submission and
// reporting over a shared record store, served over HTTP or AWS Lambda.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qualityaudit/internal/auditstore"
	"qualityaudit/internal/config"
	"qualityaudit/internal/directory"
	"qualityaudit/internal/handler"
	"qualityaudit/internal/handler/platforms"
	"qualityaudit/internal/observability"
	"qualityaudit/internal/scoring"
	"qualityaudit/internal/session"
	"qualityaudit/internal/storage"
	reportworker "qualityaudit/internal/workers/report"
	sessionworker "qualityaudit/internal/workers/session"
	submitworker "qualityaudit/internal/workers/submit"
)

func main() {
	config.MustLoad()
	cfg := config.MustGet()

	provider := observability.NewProvider(&observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	defer provider.Close()

	logger := provider.Logger("main")
	ctx := context.Background()

	logger.Info(ctx, "starting quality audit service", observability.Fields{
		"environment":      cfg.Environment,
		"storage_provider": cfg.Storage.Provider,
	})

	objectStorage, err := storage.New(cfg, provider.Logger("storage"), provider.Metrics("storage"))
	if err != nil {
		log.Fatalf("initializing storage: %v", err)
	}

	table, err := scoring.LoadRuleTable(cfg.Scoring.RulesFile)
	if err != nil {
		log.Fatalf("loading scoring rules: %v", err)
	}
	logger.Info(ctx, "scoring rules loaded", observability.Fields{
		"parameters": len(table.Parameters),
		"max_total":  table.MaxTotal(),
	})

	dir, err := directory.LoadFile(cfg.Directory.EmployeeCSV)
	if err != nil {
		log.Fatalf("loading employee directory: %v", err)
	}
	logger.Info(ctx, "employee directory loaded", observability.Fields{
		"associates": dir.Len(),
	})

	store := auditstore.NewRecordStore(
		objectStorage,
		cfg.Storage.Bucket,
		cfg.Storage.Prefix,
		provider.Logger("auditstore"),
		provider.Metrics("auditstore"),
	)
	checker := auditstore.NewDuplicateChecker(store, provider.Logger("auditstore"))
	engine := scoring.NewEngine(table)
	sessions := session.NewStore()

	sessionW := sessionworker.NewWorker(sessions, dir, checker, provider.Logger("session"), provider.Metrics("session"))
	submit := submitworker.NewWorker(store, checker, engine, dir, sessions, provider.Logger("submit"), provider.Metrics("submit"))
	report := reportworker.NewWorker(store, cfg.Report.RecentAudits, provider.Logger("report"), provider.Metrics("report"))

	router := newRouterWorker(sessionW, submit, report)
	h := handler.New(router, provider.Logger("handler"), provider.Metrics("handler"), cfg.Handler)

	switch detectPlatform(cfg.Handler.Platform) {
	case "lambda":
		platforms.NewLambdaAdapter(h).Start()
	default:
		serveHTTP(h, cfg)
	}
}

func serveHTTP(h *handler.Handler, cfg *config.Config) {
	adapter := platforms.NewHTTPAdapter(h)

	mux := http.NewServeMux()
	mux.Handle("/", adapter)
	if cfg.Handler.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

func detectPlatform(configured string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	if _, ok := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME"); ok {
		return "lambda"
	}
	if _, ok := os.LookupEnv("AWS_LAMBDA_RUNTIME_API"); ok {
		return "lambda"
	}
	return "http"
}
