package metering

// ConsumptionAggregate is the derived per-channel consumption summary.
// Recomputed on demand from the reading set; never persisted on its own.
type ConsumptionAggregate struct {
	NMI          string
	Period       DateRange
	TotalKWh     float64
	Buckets      map[string]float64
	ReadingCount int
}

// BucketKWh returns a bucket's consumption, zero when absent.
func (a ConsumptionAggregate) BucketKWh(name string) float64 {
	return a.Buckets[name]
}

// BuildAggregate classifies a channel's readings under a TOU policy and
// sums them into buckets. When rng is non-zero only readings inside it
// count; the reported period is then the requested range.
func BuildAggregate(ch *Channel, policy TOUPolicy, rng DateRange) ConsumptionAggregate {
	agg := ConsumptionAggregate{
		NMI:     ch.Descriptor.NMI,
		Buckets: map[string]float64{BucketPeak: 0, BucketOffPeak: 0},
	}
	if rng.IsZero() {
		agg.Period = DateRange{Start: ch.PeriodStart, End: ch.PeriodEnd}
	} else {
		agg.Period = rng
	}

	for _, reading := range ch.Readings {
		if !rng.IsZero() && !rng.Contains(reading.Date) {
			continue
		}
		bucket := policy.Bucket(reading.Date, reading.MinuteOfDay(ch.Descriptor.IntervalLength))
		agg.Buckets[bucket] += reading.Value
		agg.TotalKWh += reading.Value
		agg.ReadingCount++
	}
	return agg
}
