package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoice-audit/internal/audit"
	"invoice-audit/internal/auth"
	billing "invoice-audit/internal/billing/domain"
	metering "invoice-audit/internal/metering/domain"
	"invoice-audit/internal/observability/metrics"
	reconapp "invoice-audit/internal/reconciliation/application"
	reconciliation "invoice-audit/internal/reconciliation/domain"
	"invoice-audit/internal/reconciliation/interfaces"
	tariff "invoice-audit/internal/tariff/domain"
)

// Handler serves reconciliation endpoints.
type Handler struct {
	service     *reconapp.Service
	engine      *reconapp.Engine
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *reconapp.Service, engine *reconapp.Engine, auditLogger audit.Logger) (*Handler, error) {
	if service == nil || engine == nil {
		return nil, errors.New("reconciliation handler: nil collaborator")
	}
	return &Handler{service: service, engine: engine, auditLogger: auditLogger}, nil
}

// ServeHTTP routes reconciliation requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/reconciliation/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/reconciliation/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] == "run" && r.Method == http.MethodPost {
		h.handleRun(w, r)
		return
	}
	if len(parts) == 2 && parts[0] == "history" && r.Method == http.MethodGet {
		h.handleHistory(w, r, parts[1])
		return
	}
	if len(parts) == 2 && parts[0] == "export" && r.Method == http.MethodGet {
		h.handleExport(w, r, parts[1])
		return
	}
	if len(parts) == 1 && parts[0] != "" && r.Method == http.MethodGet {
		h.handleGet(w, r, parts[0])
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

type runRequest struct {
	InvoiceFileID string   `json:"invoice_file_id"`
	MeterFileID   string   `json:"nem12_file_id"`
	TariffCode    string   `json:"network_tariff_code"`
	TolerancePct  *float64 `json:"tolerance_percent"`
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		metrics.ObserveReconcile(metrics.ResultError, time.Since(start))
		return
	}
	if req.InvoiceFileID == "" || req.MeterFileID == "" {
		http.Error(w, "invoice_file_id and nem12_file_id are required", http.StatusBadRequest)
		metrics.ObserveReconcile(metrics.ResultError, time.Since(start))
		return
	}

	appReq := reconapp.RunRequest{
		InvoiceFileID: req.InvoiceFileID,
		MeterFileID:   req.MeterFileID,
		TariffCode:    req.TariffCode,
	}
	if req.TolerancePct != nil {
		appReq.TolerancePct = *req.TolerancePct
		appReq.ToleranceSet = true
	}

	summary, err := h.service.Run(r.Context(), appReq)
	if err != nil {
		respondRunError(w, err)
		metrics.ObserveReconcile(metrics.ResultError, time.Since(start))
		return
	}
	metrics.ObserveReconcile(metrics.ResultSuccess, time.Since(start))
	metrics.IncReconcileStatus(string(summary.OverallStatus))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
	h.logAudit(r, summary.ID, "reconciliation.run", map[string]any{
		"invoice_file_id": req.InvoiceFileID,
		"nem12_file_id":   req.MeterFileID,
		"overall_status":  string(summary.OverallStatus),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := h.engine.Summary(r.Context(), id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrSummaryNotFound) {
			http.Error(w, "reconciliation not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

type historyItem struct {
	ID              string          `json:"reconciliation_id"`
	NMI             string          `json:"nmi"`
	InvoiceNumber   string          `json:"invoice_number"`
	PeriodStart     time.Time       `json:"billing_period_start"`
	PeriodEnd       time.Time       `json:"billing_period_end"`
	OverallStatus   string          `json:"overall_status"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	ReconciledAt    time.Time       `json:"reconciled_at"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, nmi string) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	summaries, err := h.engine.History(r.Context(), nmi, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]historyItem, 0, len(summaries))
	for _, summary := range summaries {
		resp = append(resp, historyItem{
			ID:              summary.ID,
			NMI:             summary.NMI,
			InvoiceNumber:   summary.InvoiceNumber,
			PeriodStart:     summary.PeriodStart,
			PeriodEnd:       summary.PeriodEnd,
			OverallStatus:   string(summary.OverallStatus),
			TotalDifference: summary.TotalDifference,
			ReconciledAt:    summary.ReconciledAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	summary, err := h.engine.Summary(r.Context(), id)
	if err != nil {
		if errors.Is(err, reconciliation.ErrSummaryNotFound) {
			http.Error(w, "reconciliation not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		metrics.ObserveReconcileExport(format, metrics.ResultError, time.Since(start))
		return
	}

	var content []byte
	var contentType string
	switch format {
	case "csv":
		content = interfaces.BuildSummaryCSV(summary)
		contentType = "text/csv"
	case "pdf":
		content, err = interfaces.BuildSummaryPDF(summary)
		contentType = "application/pdf"
	case "xlsx":
		content, err = interfaces.BuildSummaryXLSX(summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		http.Error(w, "unsupported format, expected csv, pdf, or xlsx", http.StatusBadRequest)
		metrics.ObserveReconcileExport(format, metrics.ResultError, time.Since(start))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		metrics.ObserveReconcileExport(format, metrics.ResultError, time.Since(start))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=reconciliation_%s.%s", id, format))
	_, _ = w.Write(content)
	metrics.ObserveReconcileExport(format, metrics.ResultSuccess, time.Since(start))
	h.logAudit(r, id, "reconciliation.export", map[string]any{"format": format})
}

func (h *Handler) logAudit(r *http.Request, resourceID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "reconciliation",
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, metering.ErrFileNotFound),
		errors.Is(err, metering.ErrChannelNotFound),
		errors.Is(err, tariff.ErrTariffNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reconciliation.ErrToleranceOutOfRange),
		errors.Is(err, metering.ErrInvalidDateRange),
		errors.Is(err, billing.ErrEmptyAggregate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
