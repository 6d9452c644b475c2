package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"invoice-audit/internal/observability/metrics"
	tariff "invoice-audit/internal/tariff/domain"
)

// Handler serves tariff catalog endpoints.
type Handler struct {
	catalog tariff.Catalog
}

// NewHandler constructs a Handler.
func NewHandler(catalog tariff.Catalog) (*Handler, error) {
	if catalog == nil {
		return nil, errors.New("tariff handler: nil catalog")
	}
	return &Handler{catalog: catalog}, nil
}

// ServeHTTP routes tariff requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/tariffs/") || r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/tariffs/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] == "network-providers" {
		h.handleProviders(w)
		return
	}
	if len(parts) == 2 && parts[0] == "network" {
		h.handleProviderTariffs(w, r, parts[1])
		return
	}
	if len(parts) == 3 && parts[0] == "network" {
		h.handleTariffDetails(w, r, parts[1], parts[2])
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

type providerInfo struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	State string `json:"state"`
}

func (h *Handler) handleProviders(w http.ResponseWriter) {
	resp := make([]providerInfo, 0, len(tariff.Providers))
	for _, code := range tariff.Providers {
		resp = append(resp, providerInfo{
			Code:  code,
			Name:  providerDisplayName(code),
			State: tariff.ProviderState(code),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type periodView struct {
	Name      string   `json:"name"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Days      []string `json:"days"`
	RateCents string   `json:"rate_cents"`
}

type tariffView struct {
	Code             string       `json:"code"`
	Name             string       `json:"name"`
	Provider         string       `json:"provider"`
	Type             string       `json:"tariff_type"`
	EffectiveFrom    string       `json:"effective_from"`
	DailySupplyCents string       `json:"daily_supply_cents"`
	UsageRateCents   string       `json:"usage_rate_cents,omitempty"`
	Periods          []periodView `json:"time_periods,omitempty"`
}

func (h *Handler) handleProviderTariffs(w http.ResponseWriter, r *http.Request, provider string) {
	if !tariff.ValidProvider(provider) {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	var tariffType tariff.Type
	if raw := r.URL.Query().Get("tariff_type"); raw != "" {
		tariffType = tariff.Type(raw)
		if !tariffType.Valid() {
			http.Error(w, "tariff_type must be flat, tou, or demand", http.StatusBadRequest)
			return
		}
	}
	definitions, err := h.catalog.ListTariffs(r.Context(), provider, tariffType)
	if err != nil {
		respondTariffError(w, err)
		return
	}
	resp := make([]tariffView, 0, len(definitions))
	for _, def := range definitions {
		resp = append(resp, toTariffView(def))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleTariffDetails(w http.ResponseWriter, r *http.Request, provider, code string) {
	if !tariff.ValidProvider(provider) {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	def, err := h.catalog.TariffByCode(r.Context(), code)
	if err != nil {
		metrics.IncTariffLookup(metrics.ResultError)
		respondTariffError(w, err)
		return
	}
	if def.Provider != provider {
		metrics.IncTariffLookup(metrics.ResultError)
		http.Error(w, "tariff not found", http.StatusNotFound)
		return
	}
	metrics.IncTariffLookup(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toTariffView(def))
}

func toTariffView(def *tariff.TariffDefinition) tariffView {
	view := tariffView{
		Code:             def.Code,
		Name:             def.Name,
		Provider:         def.Provider,
		Type:             string(def.Type),
		EffectiveFrom:    def.EffectiveFrom.Format("2006-01-02"),
		DailySupplyCents: def.DailySupplyCents.String(),
	}
	if !def.UsageRateCents.IsZero() {
		view.UsageRateCents = def.UsageRateCents.String()
	}
	for _, period := range def.Periods {
		days := make([]string, 0, len(period.Days))
		for _, day := range period.Days {
			days = append(days, strings.ToLower(day.String()[:3]))
		}
		view.Periods = append(view.Periods, periodView{
			Name:      period.Name,
			StartTime: minuteClock(period.StartMinute),
			EndTime:   minuteClock(period.EndMinute),
			Days:      days,
			RateCents: period.RateCents.String(),
		})
	}
	return view
}

func minuteClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func providerDisplayName(code string) string {
	words := strings.Split(code, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func respondTariffError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tariff.ErrTariffNotFound):
		http.Error(w, "tariff not found", http.StatusNotFound)
	case errors.Is(err, tariff.ErrUnknownProvider):
		http.Error(w, "unknown provider", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
