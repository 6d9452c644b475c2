package metering

import "time"

// Time-of-use bucket names shared with tariff period matching.
const (
	BucketPeak     = "peak"
	BucketOffPeak  = "off_peak"
	BucketShoulder = "shoulder"
)

// TOUPolicy assigns a time-of-use bucket to a reading slice.
type TOUPolicy interface {
	Bucket(date time.Time, minuteOfDay int) string
}

// DefaultTOUPolicy is the store's fixed classification: peak on weekdays
// between 07:00 and 22:00, everything else off-peak. It is deliberately
// independent of any tariff's own period rules; callers needing
// tariff-specific windows reclassify from the raw reading list.
type DefaultTOUPolicy struct{}

// Bucket implements TOUPolicy.
func (DefaultTOUPolicy) Bucket(date time.Time, minuteOfDay int) string {
	weekday := date.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return BucketOffPeak
	}
	hour := minuteOfDay / 60
	if hour >= 7 && hour < 22 {
		return BucketPeak
	}
	return BucketOffPeak
}
