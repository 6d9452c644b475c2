package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "audit_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	nem12IngestTotal   *prometheus.CounterVec
	nem12IngestLatency *prometheus.HistogramVec

	invoiceIntakeTotal *prometheus.CounterVec

	invoiceCalculateTotal   *prometheus.CounterVec
	invoiceCalculateLatency *prometheus.HistogramVec

	tariffLookupTotal *prometheus.CounterVec

	reconcileTotal   *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec
	reconcileStatus  *prometheus.CounterVec

	reconcileExportTotal   *prometheus.CounterVec
	reconcileExportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		nem12IngestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "nem12_ingest_total",
				Help: "Total NEM12 file ingestions by result",
			},
			[]string{"result"},
		)
		nem12IngestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "nem12_ingest_latency_seconds",
				Help:    "NEM12 ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		invoiceIntakeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_intake_total",
				Help: "Total parsed invoice submissions by result",
			},
			[]string{"result"},
		)

		invoiceCalculateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_calculate_total",
				Help: "Total expected invoice calculations by result",
			},
			[]string{"result"},
		)
		invoiceCalculateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_calculate_latency_seconds",
				Help:    "Expected invoice calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		tariffLookupTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tariff_lookup_total",
				Help: "Total tariff catalog lookups by result",
			},
			[]string{"result"},
		)

		reconcileTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_total",
				Help: "Total reconciliation runs by result",
			},
			[]string{"result"},
		)
		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Reconciliation run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		reconcileStatus = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_status_total",
				Help: "Total reconciliation runs by overall status",
			},
			[]string{"status"},
		)

		reconcileExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_export_total",
				Help: "Total summary exports by format and result",
			},
			[]string{"format", "result"},
		)
		reconcileExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_export_latency_seconds",
				Help:    "Summary export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			nem12IngestTotal,
			nem12IngestLatency,
			invoiceIntakeTotal,
			invoiceCalculateTotal,
			invoiceCalculateLatency,
			tariffLookupTotal,
			reconcileTotal,
			reconcileLatency,
			reconcileStatus,
			reconcileExportTotal,
			reconcileExportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_open_connections",
				Help: "Open database connections",
			},
			func() float64 { return float64(db.Stats().OpenConnections) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_in_use_connections",
				Help: "Database connections currently in use",
			},
			func() float64 { return float64(db.Stats().InUse) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "db_idle_connections",
				Help: "Idle database connections",
			},
			func() float64 { return float64(db.Stats().Idle) },
		),
	}
	for _, collector := range collectors {
		if err := prometheus.Register(collector); err != nil && logger != nil {
			logger.Printf("metrics: db collector registration failed: %v", err)
		}
	}
}

// ObserveNEM12Ingest records one ingest attempt.
func ObserveNEM12Ingest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if nem12IngestTotal != nil {
		nem12IngestTotal.WithLabelValues(result).Inc()
	}
	if nem12IngestLatency != nil {
		nem12IngestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncInvoiceIntake counts one parsed invoice submission.
func IncInvoiceIntake(result string) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceIntakeTotal != nil {
		invoiceIntakeTotal.WithLabelValues(result).Inc()
	}
}

// ObserveInvoiceCalculate records one expected invoice calculation.
func ObserveInvoiceCalculate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceCalculateTotal != nil {
		invoiceCalculateTotal.WithLabelValues(result).Inc()
	}
	if invoiceCalculateLatency != nil {
		invoiceCalculateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncTariffLookup counts one catalog lookup.
func IncTariffLookup(result string) {
	if result == "" {
		result = resultSuccess
	}
	if tariffLookupTotal != nil {
		tariffLookupTotal.WithLabelValues(result).Inc()
	}
}

// ObserveReconcile records one reconciliation run.
func ObserveReconcile(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileTotal != nil {
		reconcileTotal.WithLabelValues(result).Inc()
	}
	if reconcileLatency != nil {
		reconcileLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReconcileStatus counts one run's overall status.
func IncReconcileStatus(status string) {
	if status == "" {
		status = "unknown"
	}
	if reconcileStatus != nil {
		reconcileStatus.WithLabelValues(status).Inc()
	}
}

// ObserveReconcileExport records one export by format.
func ObserveReconcileExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reconcileExportTotal != nil {
		reconcileExportTotal.WithLabelValues(format, result).Inc()
	}
	if reconcileExportLatency != nil {
		reconcileExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
