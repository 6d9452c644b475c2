package catalog

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	tariff "invoice-audit/internal/tariff/domain"
)

// StaticCatalog serves built-in provider tariff schedules, optionally
// overridden per provider from a YAML file. In production the schedules
// would be refreshed from provider publications; the catalog boundary is
// the same either way.
type StaticCatalog struct {
	mu         sync.RWMutex
	byProvider map[string][]*tariff.TariffDefinition
}

// NewStaticCatalog constructs a catalog with the built-in schedules.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{byProvider: builtinTariffs()}
}

// TariffByCode resolves a tariff by code across all providers.
func (c *StaticCatalog) TariffByCode(ctx context.Context, code string) (*tariff.TariffDefinition, error) {
	_ = ctx
	if code == "" {
		return nil, tariff.ErrTariffNotFound
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, provider := range tariff.Providers {
		for _, def := range c.byProvider[provider] {
			if def.Code == code {
				return def, nil
			}
		}
	}
	return nil, tariff.ErrTariffNotFound
}

// ListTariffs returns a provider's tariffs, optionally filtered by type.
func (c *StaticCatalog) ListTariffs(ctx context.Context, provider string, tariffType tariff.Type) ([]*tariff.TariffDefinition, error) {
	_ = ctx
	if !tariff.ValidProvider(provider) {
		return nil, tariff.ErrUnknownProvider
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*tariff.TariffDefinition
	for _, def := range c.byProvider[provider] {
		if tariffType != "" && def.Type != tariffType {
			continue
		}
		result = append(result, def)
	}
	return result, nil
}

type catalogFile struct {
	Providers map[string][]tariffEntry `yaml:"providers"`
}

type tariffEntry struct {
	Code             string        `yaml:"code"`
	Name             string        `yaml:"name"`
	Type             string        `yaml:"type"`
	EffectiveFrom    string        `yaml:"effective_from"`
	DailySupplyCents float64       `yaml:"daily_supply_cents"`
	UsageRateCents   float64       `yaml:"usage_rate_cents"`
	Periods          []periodEntry `yaml:"periods"`
}

type periodEntry struct {
	Name      string   `yaml:"name"`
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	Days      []string `yaml:"days"`
	RateCents float64  `yaml:"rate_cents"`
}

// LoadFile merges tariffs from a YAML file; a provider listed in the file
// replaces that provider's built-in schedule entirely.
func (c *StaticCatalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	merged := make(map[string][]*tariff.TariffDefinition, len(file.Providers))
	for provider, entries := range file.Providers {
		if !tariff.ValidProvider(provider) {
			return fmt.Errorf("catalog: %w: %s", tariff.ErrUnknownProvider, provider)
		}
		defs := make([]*tariff.TariffDefinition, 0, len(entries))
		for _, entry := range entries {
			def, err := entry.toDefinition(provider)
			if err != nil {
				return fmt.Errorf("catalog: tariff %s: %w", entry.Code, err)
			}
			defs = append(defs, def)
		}
		merged[provider] = defs
	}

	c.mu.Lock()
	for provider, defs := range merged {
		c.byProvider[provider] = defs
	}
	c.mu.Unlock()
	return nil
}

func (e tariffEntry) toDefinition(provider string) (*tariff.TariffDefinition, error) {
	if e.Code == "" {
		return nil, fmt.Errorf("empty code")
	}
	tariffType := tariff.Type(e.Type)
	if !tariffType.Valid() {
		return nil, fmt.Errorf("invalid type %q", e.Type)
	}
	def := &tariff.TariffDefinition{
		Code:             e.Code,
		Name:             e.Name,
		Provider:         provider,
		Type:             tariffType,
		DailySupplyCents: decimal.NewFromFloat(e.DailySupplyCents),
		UsageRateCents:   decimal.NewFromFloat(e.UsageRateCents),
	}
	if e.EffectiveFrom != "" {
		from, err := time.ParseInLocation("2006-01-02", e.EffectiveFrom, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid effective_from %q", e.EffectiveFrom)
		}
		def.EffectiveFrom = from
	}
	for _, p := range e.Periods {
		period, err := p.toPeriod()
		if err != nil {
			return nil, err
		}
		def.Periods = append(def.Periods, period)
	}
	return def, nil
}

func (e periodEntry) toPeriod() (tariff.TimePeriod, error) {
	start, err := parseMinute(e.Start)
	if err != nil {
		return tariff.TimePeriod{}, err
	}
	end, err := parseMinute(e.End)
	if err != nil {
		return tariff.TimePeriod{}, err
	}
	days, err := parseDays(e.Days)
	if err != nil {
		return tariff.TimePeriod{}, err
	}
	return tariff.TimePeriod{
		Name:        e.Name,
		StartMinute: start,
		EndMinute:   end,
		Days:        days,
		RateCents:   decimal.NewFromFloat(e.RateCents),
	}, nil
}

func parseMinute(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return hour*60 + minute, nil
}

var dayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func parseDays(names []string) ([]time.Weekday, error) {
	if len(names) == 0 {
		return allDays(), nil
	}
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := dayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("invalid day %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}
