package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	tariff "invoice-audit/internal/tariff/domain"
)

// Built-in schedules mirror each distributor's published residential
// tariffs for the 2024 regulatory year.

func builtinTariffs() map[string][]*tariff.TariffDefinition {
	return map[string][]*tariff.TariffDefinition{
		tariff.ProviderAusgrid: {
			{
				Code:             "EA010",
				Name:             "Residential Time of Use",
				Provider:         tariff.ProviderAusgrid,
				Type:             tariff.TypeTimeOfUse,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("98.37"),
				Periods: []tariff.TimePeriod{
					touPeriod("peak", "14:00", "20:00", weekdays(), "35.64"),
					touPeriod("shoulder", "07:00", "14:00", weekdays(), "12.87"),
					touPeriod("shoulder", "20:00", "22:00", weekdays(), "12.87"),
					touPeriod("off_peak", "22:00", "07:00", allDays(), "8.14"),
					touPeriod("off_peak", "00:00", "24:00", weekends(), "8.14"),
				},
			},
			{
				Code:             "EA025",
				Name:             "Residential Flat Rate",
				Provider:         tariff.ProviderAusgrid,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("98.37"),
				UsageRateCents:   cents("18.45"),
			},
		},
		tariff.ProviderEndeavourEnergy: {
			{
				Code:             "N70",
				Name:             "Residential Time of Use",
				Provider:         tariff.ProviderEndeavourEnergy,
				Type:             tariff.TypeTimeOfUse,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("89.50"),
				Periods: []tariff.TimePeriod{
					touPeriod("peak", "13:00", "20:00", weekdays(), "29.82"),
					touPeriod("shoulder", "07:00", "13:00", weekdays(), "11.43"),
					touPeriod("off_peak", "20:00", "07:00", allDays(), "7.89"),
				},
			},
		},
		tariff.ProviderEssentialEnergy: {
			{
				Code:             "BLNN2AU",
				Name:             "Residential Single Rate",
				Provider:         tariff.ProviderEssentialEnergy,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("115.20"),
				UsageRateCents:   cents("14.85"),
			},
		},
		tariff.ProviderAusnetServices: {
			{
				Code:             "NAST11",
				Name:             "Small Residential TOU Weekday",
				Provider:         tariff.ProviderAusnetServices,
				Type:             tariff.TypeTimeOfUse,
				EffectiveFrom:    january2024,
				DailySupplyCents: cents("41.60"),
				Periods: []tariff.TimePeriod{
					touPeriod("peak", "15:00", "21:00", weekdays(), "18.14"),
					touPeriod("off_peak", "00:00", "15:00", allDays(), "6.83"),
					touPeriod("off_peak", "21:00", "24:00", allDays(), "6.83"),
				},
			},
		},
		tariff.ProviderCitipower: {
			{
				Code:             "C1R",
				Name:             "Residential Single Rate",
				Provider:         tariff.ProviderCitipower,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    january2024,
				DailySupplyCents: cents("31.90"),
				UsageRateCents:   cents("8.75"),
			},
		},
		tariff.ProviderPowercor: {
			{
				Code:             "D1",
				Name:             "Residential Single Rate",
				Provider:         tariff.ProviderPowercor,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    january2024,
				DailySupplyCents: cents("55.20"),
				UsageRateCents:   cents("9.85"),
			},
		},
		tariff.ProviderJemena: {
			{
				Code:             "A100",
				Name:             "Residential Anytime",
				Provider:         tariff.ProviderJemena,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    january2024,
				DailySupplyCents: cents("36.70"),
				UsageRateCents:   cents("8.25"),
			},
		},
		tariff.ProviderUnitedEnergy: {
			{
				Code:             "LVS1R",
				Name:             "Residential Single Rate",
				Provider:         tariff.ProviderUnitedEnergy,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    january2024,
				DailySupplyCents: cents("34.50"),
				UsageRateCents:   cents("8.45"),
			},
		},
		tariff.ProviderEnergex: {
			{
				Code:             "8400",
				Name:             "Residential Flat",
				Provider:         tariff.ProviderEnergex,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("55.80"),
				UsageRateCents:   cents("11.23"),
			},
		},
		tariff.ProviderErgonEnergy: {
			{
				Code:             "8400",
				Name:             "Residential Flat",
				Provider:         tariff.ProviderErgonEnergy,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("102.50"),
				UsageRateCents:   cents("12.45"),
			},
		},
		tariff.ProviderEvoenergy: {
			{
				Code:             "RES-TOU",
				Name:             "Residential Time of Use",
				Provider:         tariff.ProviderEvoenergy,
				Type:             tariff.TypeTimeOfUse,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("52.30"),
				Periods: []tariff.TimePeriod{
					touPeriod("peak", "17:00", "20:00", weekdays(), "24.50"),
					touPeriod("off_peak", "00:00", "17:00", allDays(), "8.90"),
					touPeriod("off_peak", "20:00", "24:00", allDays(), "8.90"),
				},
			},
		},
		tariff.ProviderTasnetworks: {
			{
				Code:             "TAS31",
				Name:             "Residential Light and Power",
				Provider:         tariff.ProviderTasnetworks,
				Type:             tariff.TypeFlat,
				EffectiveFrom:    july2024,
				DailySupplyCents: cents("42.50"),
				UsageRateCents:   cents("12.80"),
			},
		},
	}
}

var (
	january2024 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	july2024    = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
)

func cents(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func touPeriod(name, start, end string, days []time.Weekday, rate string) tariff.TimePeriod {
	startMinute, err := parseMinute(start)
	if err != nil {
		panic(err)
	}
	endMinute, err := parseMinute(end)
	if err != nil {
		panic(err)
	}
	return tariff.TimePeriod{
		Name:        name,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Days:        days,
		RateCents:   cents(rate),
	}
}

func weekdays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

func weekends() []time.Weekday {
	return []time.Weekday{time.Saturday, time.Sunday}
}

func allDays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
}
