package metering

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func buildDayRow(date string, count int, value float64) string {
	fields := []string{"300", date}
	for i := 0; i < count; i++ {
		fields = append(fields, fmt.Sprintf("%.3f", value))
	}
	return strings.Join(fields, ",")
}

func TestParseNEM12_FullDay(t *testing.T) {
	content := strings.Join([]string{
		"100,NEM12,202401150830,RETAILER,DNSP",
		"200,6123456789,E1,1,E1,N,METER01,kWh,30",
		buildDayRow("20240115", 48, 1.0),
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	ch := channels[0]
	if ch.Descriptor.NMI != "6123456789" {
		t.Fatalf("unexpected nmi: %s", ch.Descriptor.NMI)
	}
	if ch.Descriptor.IntervalLength != 30 {
		t.Fatalf("unexpected interval length: %d", ch.Descriptor.IntervalLength)
	}
	if ch.Descriptor.MeterSerial != "METER01" {
		t.Fatalf("unexpected meter serial: %s", ch.Descriptor.MeterSerial)
	}
	if len(ch.Readings) != 48 {
		t.Fatalf("expected 48 readings, got %d", len(ch.Readings))
	}
	if math.Abs(ch.TotalKWh-48.0) > 1e-9 {
		t.Fatalf("expected total 48.0, got %f", ch.TotalKWh)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !ch.PeriodStart.Equal(want) || !ch.PeriodEnd.Equal(want) {
		t.Fatalf("unexpected period: %v .. %v", ch.PeriodStart, ch.PeriodEnd)
	}
}

func TestParseNEM12_MalformedReadingDropped(t *testing.T) {
	content := strings.Join([]string{
		"200,6123456789,E1,1,E1,N,METER01,kWh,30",
		"300,20240115,1.0,notanumber,2.0",
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ch := channels[0]
	if len(ch.Readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(ch.Readings))
	}
	if math.Abs(ch.TotalKWh-3.0) > 1e-9 {
		t.Fatalf("expected total 3.0, got %f", ch.TotalKWh)
	}
	// Index reflects position, not insert order.
	if ch.Readings[1].Index != 3 {
		t.Fatalf("expected surviving index 3, got %d", ch.Readings[1].Index)
	}
}

func TestParseNEM12_MalformedDateDropsRow(t *testing.T) {
	content := strings.Join([]string{
		"200,6123456789,E1,1,E1,N,METER01,kWh,30",
		"300,notadate,1.0,1.0",
		buildDayRow("20240116", 4, 0.5),
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(channels[0].Readings) != 4 {
		t.Fatalf("expected 4 readings, got %d", len(channels[0].Readings))
	}
}

func TestParseNEM12_EmptyContent(t *testing.T) {
	if _, err := ParseNEM12("   \n  "); !errors.Is(err, ErrUnparseableContent) {
		t.Fatalf("expected ErrUnparseableContent, got %v", err)
	}
}

func TestParseNEM12_MultipleChannels(t *testing.T) {
	content := strings.Join([]string{
		"200,6100000001,E1,1,E1,N,M1,kWh,30",
		buildDayRow("20240115", 48, 1.0),
		"200,6100000002,E1,1,E1,N,M2,kWh,15",
		buildDayRow("20240115", 96, 0.25),
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[1].Descriptor.IntervalLength != 15 {
		t.Fatalf("expected interval length 15, got %d", channels[1].Descriptor.IntervalLength)
	}
	if math.Abs(channels[1].TotalKWh-24.0) > 1e-9 {
		t.Fatalf("expected total 24.0, got %f", channels[1].TotalKWh)
	}
}

func TestParseNEM12_InvalidIntervalLengthFallsBack(t *testing.T) {
	content := strings.Join([]string{
		"200,6123456789,E1,1,E1,N,METER01,kWh,7",
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if channels[0].Descriptor.IntervalLength != 30 {
		t.Fatalf("expected fallback to 30, got %d", channels[0].Descriptor.IntervalLength)
	}
}

func TestParseNEM12_DuplicateNMIReplaces(t *testing.T) {
	content := strings.Join([]string{
		"200,6123456789,E1,1,E1,N,M1,kWh,30",
		buildDayRow("20240115", 48, 1.0),
		"200,6123456789,E1,1,E1,N,M2,kWh,30",
		buildDayRow("20240116", 48, 2.0),
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	if channels[0].Descriptor.MeterSerial != "M2" {
		t.Fatalf("expected later channel to win, got %s", channels[0].Descriptor.MeterSerial)
	}
	if math.Abs(channels[0].TotalKWh-96.0) > 1e-9 {
		t.Fatalf("expected total 96.0, got %f", channels[0].TotalKWh)
	}
}

func TestParseNEM12_ChannelMissingNMISkipped(t *testing.T) {
	content := strings.Join([]string{
		"200,,E1",
		"300,20240115,1.0",
		"200,6123456789,E1,1,E1,N,M1,kWh,30",
		buildDayRow("20240115", 2, 1.0),
		"900",
	}, "\n")

	channels, err := ParseNEM12(content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
}
