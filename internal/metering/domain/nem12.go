package metering

import (
	"strconv"
	"strings"
	"time"
)

// NEM12 record type tags (first field of each row).
const (
	recordHeader     = "100"
	recordChannel    = "200"
	recordInterval   = "300"
	recordQuality    = "400"
	recordTerminator = "900"
)

const (
	defaultIntervalLength = 30
	defaultUnit           = "kWh"
	dateLayout            = "20060102"
)

// ParseNEM12 tokenizes raw NEM12 content into per-channel reading sets.
// Malformed rows and unparseable reading fields are skipped; only content
// that yields no rows at all is an error. Channel contexts are strictly
// sequential: a 200 record finalizes the previous context, 900 finalizes
// the last one. A later 200 for the same NMI replaces the earlier channel.
func ParseNEM12(content string) ([]*Channel, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrUnparseableContent
	}

	var channels []*Channel
	var current *Channel

	finalize := func() {
		if current == nil {
			return
		}
		for i, ch := range channels {
			if ch.Descriptor.NMI == current.Descriptor.NMI {
				channels[i] = current
				current = nil
				return
			}
		}
		channels = append(channels, current)
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")

		switch fields[0] {
		case recordHeader:
			// Accepted for existence only; no version enforcement.
		case recordChannel:
			finalize()
			desc, ok := parseChannelRecord(fields)
			if !ok {
				continue
			}
			current = &Channel{Descriptor: desc}
		case recordInterval:
			if current != nil {
				parseIntervalRecord(fields, current)
			}
		case recordQuality:
			// Recognized but not applied: quality flags do not filter readings.
		case recordTerminator:
			finalize()
		default:
			// Unknown record types are ignored.
		}
	}

	return channels, nil
}

func parseChannelRecord(fields []string) (ChannelDescriptor, bool) {
	if len(fields) < 2 || fields[1] == "" {
		return ChannelDescriptor{}, false
	}
	desc := ChannelDescriptor{
		NMI:            fields[1],
		Unit:           defaultUnit,
		IntervalLength: defaultIntervalLength,
	}
	if len(fields) > 2 {
		desc.ConfigCode = fields[2]
	}
	if len(fields) > 3 {
		desc.RegisterID = fields[3]
	}
	if len(fields) > 4 {
		desc.Suffix = fields[4]
	}
	if len(fields) > 6 {
		desc.MeterSerial = fields[6]
	}
	if len(fields) > 7 && fields[7] != "" {
		desc.Unit = fields[7]
	}
	if len(fields) > 8 {
		if length, err := strconv.Atoi(fields[8]); err == nil && ValidIntervalLengths[length] {
			desc.IntervalLength = length
		}
	}
	return desc, true
}

func parseIntervalRecord(fields []string, ch *Channel) {
	if len(fields) < 2 {
		return
	}
	day, err := time.ParseInLocation(dateLayout, fields[1], time.UTC)
	if err != nil {
		return
	}

	if ch.PeriodStart.IsZero() || day.Before(ch.PeriodStart) {
		ch.PeriodStart = day
	}
	if ch.PeriodEnd.IsZero() || day.After(ch.PeriodEnd) {
		ch.PeriodEnd = day
	}

	// Reading values occupy fixed positions starting at field 2. A field
	// that fails numeric parsing drops that single interval only.
	count := ch.Descriptor.IntervalsPerDay()
	for i := 0; i < count; i++ {
		idx := 2 + i
		if idx >= len(fields) {
			break
		}
		value, err := strconv.ParseFloat(fields[idx], 64)
		if err != nil {
			continue
		}
		ch.Readings = append(ch.Readings, IntervalReading{Date: day, Index: i + 1, Value: value})
		ch.TotalKWh += value
	}
}
