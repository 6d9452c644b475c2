package application

import (
	"context"
	"errors"
	"log"

	billingapp "invoice-audit/internal/billing/application"
	billing "invoice-audit/internal/billing/domain"
	meteringapp "invoice-audit/internal/metering/application"
	metering "invoice-audit/internal/metering/domain"
	reconciliation "invoice-audit/internal/reconciliation/domain"
	tariff "invoice-audit/internal/tariff/domain"
)

// DefaultTariffCode is used when a run does not name a network tariff.
const DefaultTariffCode = "EA010"

// DefaultTolerancePct is the acceptable per-item discrepancy when the
// caller does not set one.
const DefaultTolerancePct = 1.0

// RunRequest names the inputs of one reconciliation run.
type RunRequest struct {
	InvoiceFileID string
	MeterFileID   string
	TariffCode    string
	TolerancePct  float64
	ToleranceSet  bool
}

// Service orchestrates a full run: load the parsed invoice, aggregate
// consumption over its billing period, derive the expected invoice and
// reconcile the two.
type Service struct {
	invoices   billing.InvoiceRepository
	intervals  *meteringapp.IntervalStore
	catalog    tariff.Catalog
	calculator *billingapp.Calculator
	engine     *Engine
	logger     *log.Logger
}

// NewService wires the reconciliation service. All collaborators are
// required except the logger.
func NewService(
	invoices billing.InvoiceRepository,
	intervals *meteringapp.IntervalStore,
	catalog tariff.Catalog,
	calculator *billingapp.Calculator,
	engine *Engine,
	logger *log.Logger,
) (*Service, error) {
	if invoices == nil || intervals == nil || catalog == nil || calculator == nil || engine == nil {
		return nil, errors.New("reconciliation service: nil collaborator")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		invoices:   invoices,
		intervals:  intervals,
		catalog:    catalog,
		calculator: calculator,
		engine:     engine,
		logger:     logger,
	}, nil
}

// Run executes one reconciliation and returns the stored summary.
func (s *Service) Run(ctx context.Context, req RunRequest) (*reconciliation.ReconciliationSummary, error) {
	envelope, err := s.invoices.FindByID(ctx, req.InvoiceFileID)
	if err != nil {
		return nil, err
	}
	if envelope == nil {
		return nil, billing.ErrInvoiceNotFound
	}
	parsed := envelope.Invoice

	period, err := metering.NewDateRange(parsed.PeriodStart, parsed.PeriodEnd)
	if err != nil {
		return nil, err
	}

	agg, err := s.intervals.Aggregate(ctx, req.MeterFileID, parsed.NMI, period)
	if err != nil {
		return nil, err
	}

	code := req.TariffCode
	if code == "" {
		code = DefaultTariffCode
	}
	def, err := s.catalog.TariffByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	calculated, err := s.calculator.Calculate(agg, def, period)
	if err != nil {
		return nil, err
	}

	tolerance := DefaultTolerancePct
	if req.ToleranceSet {
		tolerance = req.TolerancePct
	}

	summary, err := s.engine.Reconcile(ctx, parsed, calculated, tolerance)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("reconciliation %s: nmi=%s invoice=%s status=%s confidence=%.2f",
		summary.ID, summary.NMI, summary.InvoiceNumber, summary.OverallStatus, summary.ConfidenceScore)
	return summary, nil
}
