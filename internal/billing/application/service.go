package application

import (
	"context"
	"errors"
	"log"
	"time"

	billing "invoice-audit/internal/billing/domain"
	meteringapp "invoice-audit/internal/metering/application"
	metering "invoice-audit/internal/metering/domain"
	tariff "invoice-audit/internal/tariff/domain"
)

// CalculateRequest names the inputs of one expected-invoice calculation.
// NMI defaults to the file's first channel; the billing period defaults
// to that channel's observed period.
type CalculateRequest struct {
	MeterFileID string
	NMI         string
	TariffCode  string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Service derives expected invoices from stored interval data.
type Service struct {
	intervals  *meteringapp.IntervalStore
	catalog    tariff.Catalog
	calculator *Calculator
	logger     *log.Logger
}

// NewService wires the billing service.
func NewService(intervals *meteringapp.IntervalStore, catalog tariff.Catalog, calculator *Calculator, logger *log.Logger) (*Service, error) {
	if intervals == nil || catalog == nil || calculator == nil {
		return nil, errors.New("billing service: nil collaborator")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{intervals: intervals, catalog: catalog, calculator: calculator, logger: logger}, nil
}

// Calculate produces the expected invoice for one meter file.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (billing.CalculatedInvoice, error) {
	nmi := req.NMI
	if nmi == "" {
		summaries, err := s.intervals.Summaries(ctx, req.MeterFileID)
		if err != nil {
			return billing.CalculatedInvoice{}, err
		}
		if len(summaries) == 0 {
			return billing.CalculatedInvoice{}, metering.ErrChannelNotFound
		}
		nmi = summaries[0].NMI
	}

	var period metering.DateRange
	if !req.PeriodStart.IsZero() || !req.PeriodEnd.IsZero() {
		var err error
		period, err = metering.NewDateRange(req.PeriodStart, req.PeriodEnd)
		if err != nil {
			return billing.CalculatedInvoice{}, err
		}
	}

	agg, err := s.intervals.Aggregate(ctx, req.MeterFileID, nmi, period)
	if err != nil {
		return billing.CalculatedInvoice{}, err
	}
	if period.IsZero() {
		period, err = metering.NewDateRange(agg.Period.Start, agg.Period.End)
		if err != nil {
			return billing.CalculatedInvoice{}, err
		}
	}

	def, err := s.catalog.TariffByCode(ctx, req.TariffCode)
	if err != nil {
		return billing.CalculatedInvoice{}, err
	}

	calculated, err := s.calculator.Calculate(agg, def, period)
	if err != nil {
		return billing.CalculatedInvoice{}, err
	}
	s.logger.Printf("calculated invoice: nmi=%s tariff=%s total=%s", nmi, def.Code, calculated.Total.StringFixed(2))
	return calculated, nil
}
