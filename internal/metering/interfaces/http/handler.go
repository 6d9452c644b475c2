package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	meteringapp "invoice-audit/internal/metering/application"
	metering "invoice-audit/internal/metering/domain"
	"invoice-audit/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// Maximum accepted upload size, 32 MiB.
const maxUploadBytes = 32 << 20

// Handler serves interval data endpoints.
type Handler struct {
	store *meteringapp.IntervalStore
}

// NewHandler constructs a Handler.
func NewHandler(store *meteringapp.IntervalStore) (*Handler, error) {
	if store == nil {
		return nil, errors.New("metering handler: nil store")
	}
	return &Handler{store: store}, nil
}

// ServeHTTP routes interval data requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/nem12/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/nem12/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] == "upload" && r.Method == http.MethodPost {
		h.handleUpload(w, r)
		return
	}
	if len(parts) == 2 && parts[1] == "summary" && r.Method == http.MethodGet {
		h.handleSummary(w, r, parts[0])
		return
	}
	if len(parts) == 2 && parts[1] == "intervals" && r.Method == http.MethodGet {
		h.handleIntervals(w, r, parts[0])
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

type channelSummary struct {
	NMI            string  `json:"nmi"`
	MeterSerial    string  `json:"meter_serial,omitempty"`
	Unit           string  `json:"unit"`
	IntervalLength int     `json:"interval_length"`
	ReadingCount   int     `json:"interval_count"`
	TotalKWh       float64 `json:"total_kwh"`
}

type uploadResponse struct {
	FileID         string           `json:"file_id"`
	Filename       string           `json:"filename"`
	Channels       []channelSummary `json:"meters"`
	TotalIntervals int              `json:"total_intervals"`
	ProcessedAt    time.Time        `json:"processed_at"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}
	defer file.Close()

	if !validUploadName(header.Filename) {
		http.Error(w, "invalid file type, expected .csv, .txt, or .nem12", http.StatusBadRequest)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}

	fileID := uuid.NewString()
	descriptors, err := h.store.Ingest(r.Context(), fileID, string(content))
	if err != nil {
		http.Error(w, "failed to parse NEM12 file: "+err.Error(), http.StatusBadRequest)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}

	summaries, err := h.store.Summaries(r.Context(), fileID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		metrics.ObserveNEM12Ingest(metrics.ResultError, time.Since(start))
		return
	}

	countByNMI := make(map[string]metering.ConsumptionAggregate, len(summaries))
	for _, s := range summaries {
		countByNMI[s.NMI] = s
	}

	resp := uploadResponse{
		FileID:      fileID,
		Filename:    header.Filename,
		ProcessedAt: time.Now().UTC(),
	}
	for _, d := range descriptors {
		agg := countByNMI[d.NMI]
		resp.Channels = append(resp.Channels, channelSummary{
			NMI:            d.NMI,
			MeterSerial:    d.MeterSerial,
			Unit:           d.Unit,
			IntervalLength: d.IntervalLength,
			ReadingCount:   agg.ReadingCount,
			TotalKWh:       agg.TotalKWh,
		})
		resp.TotalIntervals += agg.ReadingCount
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	metrics.ObserveNEM12Ingest(metrics.ResultSuccess, time.Since(start))
}

type consumptionSummary struct {
	NMI          string             `json:"nmi"`
	PeriodStart  string             `json:"period_start"`
	PeriodEnd    string             `json:"period_end"`
	TotalKWh     float64            `json:"total_kwh"`
	Buckets      map[string]float64 `json:"buckets"`
	ReadingCount int                `json:"reading_count"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request, fileID string) {
	summaries, err := h.store.Summaries(r.Context(), fileID)
	if err != nil {
		respondMeteringError(w, err)
		return
	}
	resp := make([]consumptionSummary, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, consumptionSummary{
			NMI:          s.NMI,
			PeriodStart:  s.Period.Start.Format(dateLayout),
			PeriodEnd:    s.Period.End.Format(dateLayout),
			TotalKWh:     s.TotalKWh,
			Buckets:      s.Buckets,
			ReadingCount: s.ReadingCount,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type intervalReading struct {
	NMI   string  `json:"nmi"`
	Date  string  `json:"date"`
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (h *Handler) handleIntervals(w http.ResponseWriter, r *http.Request, fileID string) {
	rng, err := parseDateRangeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.store.IntervalData(r.Context(), fileID, r.URL.Query().Get("nmi"), rng)
	if err != nil {
		respondMeteringError(w, err)
		return
	}
	resp := make([]intervalReading, 0, len(data))
	for _, reading := range data {
		resp = append(resp, intervalReading{
			NMI:   reading.NMI,
			Date:  reading.Date.Format(dateLayout),
			Index: reading.Index,
			Value: reading.Value,
			Unit:  reading.Unit,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func validUploadName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") ||
		strings.HasSuffix(lower, ".txt") ||
		strings.HasSuffix(lower, ".nem12")
}

func parseDateRangeQuery(r *http.Request) (metering.DateRange, error) {
	startRaw := r.URL.Query().Get("start_date")
	endRaw := r.URL.Query().Get("end_date")
	if startRaw == "" && endRaw == "" {
		return metering.DateRange{}, nil
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return metering.DateRange{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return metering.DateRange{}, errors.New("end_date must be YYYY-MM-DD")
	}
	return metering.NewDateRange(start.UTC(), end.UTC())
}

func respondMeteringError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metering.ErrFileNotFound):
		http.Error(w, "file not found or not processed", http.StatusNotFound)
	case errors.Is(err, metering.ErrChannelNotFound):
		http.Error(w, "channel not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
