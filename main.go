package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"invoice-audit/internal/audit"
	"invoice-audit/internal/auth"
	billingapp "invoice-audit/internal/billing/application"
	billingmemory "invoice-audit/internal/billing/infrastructure/memory"
	billinghttp "invoice-audit/internal/billing/interfaces/http"
	meteringapp "invoice-audit/internal/metering/application"
	meteringmemory "invoice-audit/internal/metering/infrastructure/memory"
	meteringhttp "invoice-audit/internal/metering/interfaces/http"
	"invoice-audit/internal/observability/metrics"
	reconapp "invoice-audit/internal/reconciliation/application"
	reconciliation "invoice-audit/internal/reconciliation/domain"
	reconmemory "invoice-audit/internal/reconciliation/infrastructure/memory"
	reconpostgres "invoice-audit/internal/reconciliation/infrastructure/postgres"
	reconhttp "invoice-audit/internal/reconciliation/interfaces/http"
	tariffcatalog "invoice-audit/internal/tariff/infrastructure/catalog"
	tariffhttp "invoice-audit/internal/tariff/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	var summaryRepo reconciliation.SummaryRepository
	var auditLogger audit.Logger
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		pgRepo := reconpostgres.NewSummaryRepository(db)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("db schema error: %v", err)
		}
		summaryRepo = pgRepo
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("audit schema error: %v", err)
		}
		auditLogger = auditRepo
		logger.Printf("reconciliation summaries persisted to postgres")
	} else {
		summaryRepo = reconmemory.NewSummaryRepository()
		logger.Printf("reconciliation summaries held in memory")
	}

	metrics.Init(db, logger)

	catalog := tariffcatalog.NewStaticCatalog()
	if cfg.TariffCatalogPath != "" {
		if err := catalog.LoadFile(cfg.TariffCatalogPath); err != nil {
			logger.Fatalf("tariff catalog load error: %v", err)
		}
		logger.Printf("tariff catalog loaded from %s", cfg.TariffCatalogPath)
	}

	intervalStore, err := meteringapp.NewIntervalStore(meteringmemory.NewFileRepository(), nil, nil)
	if err != nil {
		logger.Fatalf("interval store error: %v", err)
	}
	invoiceRepo := billingmemory.NewInvoiceRepository()
	calculator := billingapp.NewCalculator()

	billingService, err := billingapp.NewService(intervalStore, catalog, calculator, logger)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	engine, err := reconapp.NewEngine(summaryRepo, nil)
	if err != nil {
		logger.Fatalf("reconciliation engine error: %v", err)
	}
	reconService, err := reconapp.NewService(invoiceRepo, intervalStore, catalog, calculator, engine, logger)
	if err != nil {
		logger.Fatalf("reconciliation service error: %v", err)
	}

	meteringHandler, err := meteringhttp.NewHandler(intervalStore)
	if err != nil {
		logger.Fatalf("metering handler error: %v", err)
	}
	tariffHandler, err := tariffhttp.NewHandler(catalog)
	if err != nil {
		logger.Fatalf("tariff handler error: %v", err)
	}
	billingHandler, err := billinghttp.NewHandler(invoiceRepo, billingService)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}
	reconHandler, err := reconhttp.NewHandler(reconService, engine, auditLogger)
	if err != nil {
		logger.Fatalf("reconciliation handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	if cfg.JWTSecret == "" {
		logger.Printf("AUTH_JWT_SECRET not set, API auth disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/nem12/", meteringHandler)
	mux.Handle("/api/v1/tariffs/", tariffHandler)
	mux.Handle("/api/v1/invoices", billingHandler)
	mux.Handle("/api/v1/invoices/", billingHandler)
	mux.Handle("/api/v1/reconciliation/", reconHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	TariffCatalogPath string
	JWTSecret         string
}

func loadConfig() config {
	return config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		TariffCatalogPath: getenvDefault("TARIFF_CATALOG", ""),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
