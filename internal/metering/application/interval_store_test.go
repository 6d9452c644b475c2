package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	metering "invoice-audit/internal/metering/domain"
	meteringmemory "invoice-audit/internal/metering/infrastructure/memory"
)

func sampleNEM12(t *testing.T) string {
	t.Helper()
	row := func(date string, count int, value float64) string {
		fields := []string{"300", date}
		for i := 0; i < count; i++ {
			fields = append(fields, fmt.Sprintf("%.3f", value))
		}
		return strings.Join(fields, ",")
	}
	return strings.Join([]string{
		"100,NEM12,202401150830,RETAILER,DNSP",
		"200,6123456789,E1,1,E1,N,METER01,kWh,30",
		row("20240115", 48, 1.0),
		row("20240116", 48, 0.5),
		"900",
	}, "\n")
}

func newStore(t *testing.T) *IntervalStore {
	t.Helper()
	store, err := NewIntervalStore(meteringmemory.NewFileRepository(), nil, nil)
	if err != nil {
		t.Fatalf("store error: %v", err)
	}
	return store
}

func TestIntervalStore_IngestAndSummaries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	descriptors, err := store.Ingest(ctx, "file-1", sampleNEM12(t))
	if err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if len(descriptors) != 1 || descriptors[0].NMI != "6123456789" {
		t.Fatalf("unexpected descriptors: %+v", descriptors)
	}

	summaries, err := store.Summaries(ctx, "file-1")
	if err != nil {
		t.Fatalf("summaries error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].ReadingCount != 96 {
		t.Fatalf("expected 96 readings, got %d", summaries[0].ReadingCount)
	}
	if math.Abs(summaries[0].TotalKWh-72.0) > 1e-9 {
		t.Fatalf("expected total 72.0, got %f", summaries[0].TotalKWh)
	}
}

func TestIntervalStore_AggregateUnknownFile(t *testing.T) {
	store := newStore(t)
	_, err := store.Aggregate(context.Background(), "missing", "6123456789", metering.DateRange{})
	if !errors.Is(err, metering.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestIntervalStore_AggregateUnknownChannel(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if _, err := store.Ingest(ctx, "file-1", sampleNEM12(t)); err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	_, err := store.Aggregate(ctx, "file-1", "6999999999", metering.DateRange{})
	if !errors.Is(err, metering.ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestIntervalStore_IntervalDataSortedAndFiltered(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if _, err := store.Ingest(ctx, "file-1", sampleNEM12(t)); err != nil {
		t.Fatalf("ingest error: %v", err)
	}

	data, err := store.IntervalData(ctx, "file-1", "", metering.DateRange{})
	if err != nil {
		t.Fatalf("interval data error: %v", err)
	}
	if len(data) != 96 {
		t.Fatalf("expected 96 readings, got %d", len(data))
	}
	for i := 1; i < len(data); i++ {
		prev, cur := data[i-1], data[i]
		if cur.Date.Before(prev.Date) || (cur.Date.Equal(prev.Date) && cur.Index < prev.Index) {
			t.Fatalf("readings out of order at %d", i)
		}
	}

	data, err = store.IntervalData(ctx, "file-1", "6999999999", metering.DateRange{})
	if err != nil {
		t.Fatalf("interval data error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no readings for unknown nmi, got %d", len(data))
	}
}

func TestIntervalStore_IngestRejectsEmpty(t *testing.T) {
	store := newStore(t)
	_, err := store.Ingest(context.Background(), "file-1", "  ")
	if !errors.Is(err, metering.ErrUnparseableContent) {
		t.Fatalf("expected ErrUnparseableContent, got %v", err)
	}
}
