package metering

import "time"

// ValidIntervalLengths are the interval lengths (minutes) accepted on a
// channel record. Each divides 1440 evenly.
var ValidIntervalLengths = map[int]bool{5: true, 15: true, 30: true}

// ChannelDescriptor identifies one metering channel opened by a 200 record.
// Immutable once parsed.
type ChannelDescriptor struct {
	NMI            string
	ConfigCode     string
	RegisterID     string
	Suffix         string
	MeterSerial    string
	Unit           string
	IntervalLength int
}

// IntervalsPerDay returns the number of readings a full day block carries.
func (d ChannelDescriptor) IntervalsPerDay() int {
	if d.IntervalLength <= 0 {
		return 0
	}
	return 1440 / d.IntervalLength
}

// IntervalReading is one metered value for a fixed sub-daily slice.
// Index is 1-based within the day.
type IntervalReading struct {
	Date  time.Time
	Index int
	Value float64
}

// MinuteOfDay returns the slice start as minutes since midnight.
func (r IntervalReading) MinuteOfDay(intervalLength int) int {
	return (r.Index - 1) * intervalLength
}

// Channel couples a descriptor with the readings accumulated for it.
// Readings are owned by the parsed file and never mutated afterwards.
type Channel struct {
	Descriptor  ChannelDescriptor
	Readings    []IntervalReading
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalKWh    float64
}

// MeterFile is the parsed content of one interval-meter file.
type MeterFile struct {
	ID          string
	Channels    []*Channel
	ProcessedAt time.Time
}

// ChannelByNMI returns the channel for an NMI, or nil.
func (f *MeterFile) ChannelByNMI(nmi string) *Channel {
	if f == nil {
		return nil
	}
	for _, ch := range f.Channels {
		if ch.Descriptor.NMI == nmi {
			return ch
		}
	}
	return nil
}
