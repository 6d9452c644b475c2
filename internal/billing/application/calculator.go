package application

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	billing "invoice-audit/internal/billing/domain"
	metering "invoice-audit/internal/metering/domain"
	tariff "invoice-audit/internal/tariff/domain"
)

// Documented fallback rates (cents/kWh) used when a time-of-use tariff
// carries no period matching a bucket name. Calculation proceeds on these
// instead of failing, at the cost of silently approximating.
var defaultBucketRates = map[string]decimal.Decimal{
	metering.BucketPeak:     decimal.NewFromInt(35),
	metering.BucketOffPeak:  decimal.NewFromInt(18),
	metering.BucketShoulder: decimal.NewFromInt(25),
}

var defaultFlatRate = decimal.NewFromInt(25)

// Network cost heuristic (dollars/kWh) standing in for the network
// component bundled into retail pricing.
var networkRate = decimal.New(8, -2)

// RateResolution records which branch produced a usage rate, so callers
// and tests can tell a tariff rate from a fallback.
type RateResolution struct {
	Bucket      string
	RateCents   decimal.Decimal
	DefaultUsed bool
}

// ResolveUsageRate resolves the cents/kWh rate for a bucket against a
// tariff's period rules, matching period names case-insensitively.
func ResolveUsageRate(def *tariff.TariffDefinition, bucket string) RateResolution {
	if rate, ok := def.RateForPeriodName(bucket); ok {
		return RateResolution{Bucket: bucket, RateCents: rate}
	}
	rate, ok := defaultBucketRates[bucket]
	if !ok {
		rate = defaultFlatRate
	}
	return RateResolution{Bucket: bucket, RateCents: rate, DefaultUsed: true}
}

// Calculator derives the expected invoice from a consumption aggregate
// and a tariff definition.
type Calculator struct{}

// NewCalculator constructs a calculator.
func NewCalculator() *Calculator { return &Calculator{} }

// Buckets are emitted in this order when present and non-zero.
var bucketOrder = []string{metering.BucketPeak, metering.BucketShoulder, metering.BucketOffPeak}

var bucketDescriptions = map[string]string{
	metering.BucketPeak:     "Peak Energy Usage",
	metering.BucketOffPeak:  "Off-Peak Energy Usage",
	metering.BucketShoulder: "Shoulder Energy Usage",
}

// Calculate produces the calculated invoice for one billing period.
// Line item amounts are rounded half-up to cents as they are computed;
// the subtotal sums those already-rounded amounts.
func (c *Calculator) Calculate(agg metering.ConsumptionAggregate, def *tariff.TariffDefinition, period metering.DateRange) (billing.CalculatedInvoice, error) {
	if def == nil {
		return billing.CalculatedInvoice{}, billing.ErrNilTariff
	}
	if agg.ReadingCount == 0 {
		return billing.CalculatedInvoice{}, billing.ErrEmptyAggregate
	}

	billingDays := period.Days()
	var items []billing.LineItem
	var notes []string

	dailySupply := def.DailySupplyCents.Div(decimal.NewFromInt(100))
	supplyQty := float64(billingDays)
	items = append(items, billing.LineItem{
		Description: "Daily Supply Charge",
		ChargeType:  billing.ChargeSupply,
		Quantity:    &supplyQty,
		Unit:        "day",
		Rate:        &dailySupply,
		Amount:      billing.RoundHalfUp(dailySupply.Mul(decimal.NewFromInt(int64(billingDays)))),
		TariffCode:  def.Code,
		PeriodStart: &period.Start,
		PeriodEnd:   &period.End,
	})

	if def.Type == tariff.TypeTimeOfUse && len(def.Periods) > 0 {
		for _, bucket := range bucketOrder {
			kwh := agg.BucketKWh(bucket)
			if kwh <= 0 {
				continue
			}
			resolution := ResolveUsageRate(def, bucket)
			if resolution.DefaultUsed {
				notes = append(notes, fmt.Sprintf("default rate used for %s", bucket))
			}
			items = append(items, usageItem(bucketDescriptions[bucket], kwh, resolution.RateCents, def.Code))
		}
	} else {
		resolution := RateResolution{Bucket: "flat", RateCents: def.UsageRateCents}
		if resolution.RateCents.IsZero() {
			resolution = RateResolution{Bucket: "flat", RateCents: defaultFlatRate, DefaultUsed: true}
			notes = append(notes, "default flat rate used")
		}
		items = append(items, usageItem("Energy Usage", agg.TotalKWh, resolution.RateCents, def.Code))
	}

	totalQty := agg.TotalKWh
	items = append(items, billing.LineItem{
		Description: "Network Charges",
		ChargeType:  billing.ChargeNetwork,
		Quantity:    &totalQty,
		Unit:        "kWh",
		Rate:        &networkRate,
		Amount:      billing.RoundHalfUp(decimal.NewFromFloat(agg.TotalKWh).Mul(networkRate)),
	})

	subtotal := billing.SumAmounts(items)
	gst := billing.RoundHalfUp(subtotal.Mul(billing.GSTRate))

	notes = append([]string{fmt.Sprintf("Calculated using tariff %s", def.Code)}, notes...)

	return billing.CalculatedInvoice{
		NMI:              agg.NMI,
		PeriodStart:      period.Start,
		PeriodEnd:        period.End,
		LineItems:        items,
		Subtotal:         subtotal,
		GST:              gst,
		Total:            subtotal.Add(gst),
		CalculationNotes: strings.Join(notes, "; "),
	}, nil
}

func usageItem(description string, kwh float64, rateCents decimal.Decimal, tariffCode string) billing.LineItem {
	qty := kwh
	rate := rateCents.Div(decimal.NewFromInt(100))
	return billing.LineItem{
		Description: description,
		ChargeType:  billing.ChargeUsage,
		Quantity:    &qty,
		Unit:        "kWh",
		Rate:        &rate,
		Amount:      billing.RoundHalfUp(decimal.NewFromFloat(kwh).Mul(rateCents).Div(decimal.NewFromInt(100))),
		TariffCode:  tariffCode,
	}
}
