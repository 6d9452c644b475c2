package tariff

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the pricing structure of a tariff.
type Type string

const (
	TypeFlat      Type = "flat"
	TypeTimeOfUse Type = "tou"
	TypeDemand    Type = "demand"
)

// Valid reports whether the type is a known tariff type.
func (t Type) Valid() bool {
	switch t {
	case TypeFlat, TypeTimeOfUse, TypeDemand:
		return true
	}
	return false
}

// TimePeriod is one time-of-use rate rule. Minutes are since midnight;
// EndMinute 1440 means end of day, and a window with EndMinute below
// StartMinute wraps past midnight.
type TimePeriod struct {
	Name        string
	StartMinute int
	EndMinute   int
	Days        []time.Weekday
	RateCents   decimal.Decimal
}

// AppliesTo reports whether the rule covers a weekday and minute of day.
func (p TimePeriod) AppliesTo(weekday time.Weekday, minute int) bool {
	var dayMatch bool
	for _, day := range p.Days {
		if day == weekday {
			dayMatch = true
			break
		}
	}
	if !dayMatch {
		return false
	}
	if p.EndMinute > p.StartMinute {
		return p.StartMinute <= minute && minute < p.EndMinute
	}
	return minute >= p.StartMinute || minute < p.EndMinute
}

// TariffDefinition is a published network or retail pricing rule.
// For time-of-use tariffs period coverage need not be exhaustive;
// uncovered bucket names fall back to documented default rates at
// calculation time.
type TariffDefinition struct {
	Code             string
	Name             string
	Provider         string
	Type             Type
	EffectiveFrom    time.Time
	DailySupplyCents decimal.Decimal
	UsageRateCents   decimal.Decimal
	Periods          []TimePeriod
}

// RateForPeriodName resolves a period rate by name, case-insensitively.
// The second return value reports whether a matching period exists.
func (t *TariffDefinition) RateForPeriodName(name string) (decimal.Decimal, bool) {
	for _, period := range t.Periods {
		if strings.EqualFold(period.Name, name) {
			return period.RateCents, true
		}
	}
	return decimal.Decimal{}, false
}
