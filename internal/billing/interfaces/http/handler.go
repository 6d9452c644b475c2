package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	billingapp "invoice-audit/internal/billing/application"
	billing "invoice-audit/internal/billing/domain"
	metering "invoice-audit/internal/metering/domain"
	"invoice-audit/internal/observability/metrics"
	tariff "invoice-audit/internal/tariff/domain"
)

const dateLayout = "2006-01-02"

// Handler serves parsed invoice intake and calculation endpoints.
type Handler struct {
	invoices billing.InvoiceRepository
	service  *billingapp.Service
}

// NewHandler constructs a Handler.
func NewHandler(invoices billing.InvoiceRepository, service *billingapp.Service) (*Handler, error) {
	if invoices == nil || service == nil {
		return nil, errors.New("billing handler: nil collaborator")
	}
	return &Handler{invoices: invoices, service: service}, nil
}

// ServeHTTP routes invoice requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/invoices" && r.Method == http.MethodPost {
		h.handleIntake(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/invoices/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/invoices/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] == "calculate" && r.Method == http.MethodPost {
		h.handleCalculate(w, r)
		return
	}
	if len(parts) == 1 && parts[0] != "" && r.Method == http.MethodGet {
		h.handleGet(w, r, parts[0])
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

type intakeRequest struct {
	Invoice    billing.ParsedInvoice `json:"invoice"`
	Confidence float64               `json:"confidence"`
	Warnings   []string              `json:"warnings"`
}

func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		metrics.IncInvoiceIntake(metrics.ResultError)
		return
	}
	if req.Invoice.InvoiceNumber == "" {
		http.Error(w, "invoice_number is required", http.StatusBadRequest)
		metrics.IncInvoiceIntake(metrics.ResultError)
		return
	}
	for i := range req.Invoice.LineItems {
		item := &req.Invoice.LineItems[i]
		if item.ChargeType == "" {
			item.ChargeType = billing.ClassifyCharge(item.Description)
		} else if !item.ChargeType.Valid() {
			http.Error(w, "unknown charge_type: "+string(item.ChargeType), http.StatusBadRequest)
			metrics.IncInvoiceIntake(metrics.ResultError)
			return
		}
	}

	envelope := &billing.ParsedInvoiceEnvelope{
		FileID:     uuid.NewString(),
		Invoice:    req.Invoice,
		Confidence: req.Confidence,
		Warnings:   req.Warnings,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.invoices.Save(r.Context(), envelope); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		metrics.IncInvoiceIntake(metrics.ResultError)
		return
	}
	metrics.IncInvoiceIntake(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(envelope)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, fileID string) {
	envelope, err := h.invoices.FindByID(r.Context(), fileID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if envelope == nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}

type calculateRequest struct {
	MeterFileID string `json:"nem12_file_id"`
	NMI         string `json:"nmi"`
	TariffCode  string `json:"network_tariff_code"`
	PeriodStart string `json:"billing_start"`
	PeriodEnd   string `json:"billing_end"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		metrics.ObserveInvoiceCalculate(metrics.ResultError, time.Since(start))
		return
	}
	if req.MeterFileID == "" || req.TariffCode == "" {
		http.Error(w, "nem12_file_id and network_tariff_code are required", http.StatusBadRequest)
		metrics.ObserveInvoiceCalculate(metrics.ResultError, time.Since(start))
		return
	}

	appReq := billingapp.CalculateRequest{
		MeterFileID: req.MeterFileID,
		NMI:         req.NMI,
		TariffCode:  req.TariffCode,
	}
	if req.PeriodStart != "" || req.PeriodEnd != "" {
		periodStart, err := time.Parse(dateLayout, req.PeriodStart)
		if err != nil {
			http.Error(w, "billing_start must be YYYY-MM-DD", http.StatusBadRequest)
			metrics.ObserveInvoiceCalculate(metrics.ResultError, time.Since(start))
			return
		}
		periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
		if err != nil {
			http.Error(w, "billing_end must be YYYY-MM-DD", http.StatusBadRequest)
			metrics.ObserveInvoiceCalculate(metrics.ResultError, time.Since(start))
			return
		}
		appReq.PeriodStart = periodStart.UTC()
		appReq.PeriodEnd = periodEnd.UTC()
	}

	calculated, err := h.service.Calculate(r.Context(), appReq)
	if err != nil {
		respondCalculateError(w, err)
		metrics.ObserveInvoiceCalculate(metrics.ResultError, time.Since(start))
		return
	}
	metrics.ObserveInvoiceCalculate(metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(calculated)
}

func respondCalculateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metering.ErrFileNotFound),
		errors.Is(err, metering.ErrChannelNotFound),
		errors.Is(err, tariff.ErrTariffNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, metering.ErrInvalidDateRange),
		errors.Is(err, billing.ErrEmptyAggregate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
