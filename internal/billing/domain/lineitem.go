package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeType classifies an invoice line item. Closed enumeration.
type ChargeType string

const (
	ChargeUsage         ChargeType = "usage"
	ChargeDemand        ChargeType = "demand"
	ChargeSupply        ChargeType = "supply"
	ChargeNetwork       ChargeType = "network"
	ChargeMetering      ChargeType = "metering"
	ChargeEnvironmental ChargeType = "environmental"
	ChargeTax           ChargeType = "tax"
	ChargeOther         ChargeType = "other"
)

// Valid reports whether the charge type is a known value.
func (c ChargeType) Valid() bool {
	switch c {
	case ChargeUsage, ChargeDemand, ChargeSupply, ChargeNetwork,
		ChargeMetering, ChargeEnvironmental, ChargeTax, ChargeOther:
		return true
	}
	return false
}

// ClassifyCharge derives a charge type from a free-text description, for
// callers submitting untyped line items.
func ClassifyCharge(description string) ChargeType {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "supply") || strings.Contains(desc, "service"):
		return ChargeSupply
	case strings.Contains(desc, "network") || strings.Contains(desc, "distribution") || strings.Contains(desc, "transmission"):
		return ChargeNetwork
	case strings.Contains(desc, "demand"):
		return ChargeDemand
	case strings.Contains(desc, "meter"):
		return ChargeMetering
	case strings.Contains(desc, "green") || strings.Contains(desc, "environmental") || strings.Contains(desc, "rec"):
		return ChargeEnvironmental
	case strings.Contains(desc, "gst"):
		return ChargeTax
	default:
		return ChargeUsage
	}
}

// LineItem is one charge on an invoice. Amount carries two decimal
// places, rounded half-up at the computation boundary that produced it.
// Quantity and Rate are nil when the source did not state them.
type LineItem struct {
	Description string           `json:"description"`
	ChargeType  ChargeType       `json:"charge_type"`
	Quantity    *float64         `json:"quantity,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	TariffCode  string           `json:"tariff_code,omitempty"`
	PeriodStart *time.Time       `json:"period_start,omitempty"`
	PeriodEnd   *time.Time       `json:"period_end,omitempty"`
}
