package application

import (
	"context"
	"errors"
	"sort"
	"time"

	metering "invoice-audit/internal/metering/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IntervalStore handles interval file ingestion and on-demand aggregation.
type IntervalStore struct {
	repo   metering.FileRepository
	policy metering.TOUPolicy
	clock  Clock
}

// NewIntervalStore constructs the service.
func NewIntervalStore(repo metering.FileRepository, policy metering.TOUPolicy, clock Clock) (*IntervalStore, error) {
	if repo == nil {
		return nil, errors.New("interval store: nil repository")
	}
	if policy == nil {
		policy = metering.DefaultTOUPolicy{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &IntervalStore{repo: repo, policy: policy, clock: clock}, nil
}

// Ingest parses raw NEM12 content, stores the result under fileID and
// returns the channel descriptors found.
func (s *IntervalStore) Ingest(ctx context.Context, fileID, content string) ([]metering.ChannelDescriptor, error) {
	channels, err := metering.ParseNEM12(content)
	if err != nil {
		return nil, err
	}

	file := &metering.MeterFile{ID: fileID, Channels: channels, ProcessedAt: s.clock.Now()}
	if err := s.repo.Save(ctx, file); err != nil {
		return nil, err
	}

	descriptors := make([]metering.ChannelDescriptor, 0, len(channels))
	for _, ch := range channels {
		descriptors = append(descriptors, ch.Descriptor)
	}
	return descriptors, nil
}

// Aggregate recomputes the consumption aggregate for one channel of a
// processed file. A zero rng covers the channel's observed period.
func (s *IntervalStore) Aggregate(ctx context.Context, fileID, nmi string, rng metering.DateRange) (metering.ConsumptionAggregate, error) {
	ch, err := s.channel(ctx, fileID, nmi)
	if err != nil {
		return metering.ConsumptionAggregate{}, err
	}
	return metering.BuildAggregate(ch, s.policy, rng), nil
}

// Summaries aggregates every channel in a file over its own period.
func (s *IntervalStore) Summaries(ctx context.Context, fileID string) ([]metering.ConsumptionAggregate, error) {
	file, err := s.file(ctx, fileID)
	if err != nil {
		return nil, err
	}
	summaries := make([]metering.ConsumptionAggregate, 0, len(file.Channels))
	for _, ch := range file.Channels {
		summaries = append(summaries, metering.BuildAggregate(ch, s.policy, metering.DateRange{}))
	}
	return summaries, nil
}

// ChannelReading is one interval reading tagged with its NMI, for charting.
type ChannelReading struct {
	NMI     string
	Date    time.Time
	Index   int
	Value   float64
	Unit    string
}

// IntervalData lists raw readings, optionally filtered by NMI and date
// range, sorted by (NMI, date, interval index). The raw list is exposed so
// callers can reclassify under tariff-specific windows.
func (s *IntervalStore) IntervalData(ctx context.Context, fileID, nmi string, rng metering.DateRange) ([]ChannelReading, error) {
	file, err := s.file(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var result []ChannelReading
	for _, ch := range file.Channels {
		if nmi != "" && ch.Descriptor.NMI != nmi {
			continue
		}
		for _, reading := range ch.Readings {
			if !rng.IsZero() && !rng.Contains(reading.Date) {
				continue
			}
			result = append(result, ChannelReading{
				NMI:   ch.Descriptor.NMI,
				Date:  reading.Date,
				Index: reading.Index,
				Value: reading.Value,
				Unit:  ch.Descriptor.Unit,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].NMI != result[j].NMI {
			return result[i].NMI < result[j].NMI
		}
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Index < result[j].Index
	})
	return result, nil
}

func (s *IntervalStore) file(ctx context.Context, fileID string) (*metering.MeterFile, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, metering.ErrFileNotFound
	}
	return file, nil
}

func (s *IntervalStore) channel(ctx context.Context, fileID, nmi string) (*metering.Channel, error) {
	file, err := s.file(ctx, fileID)
	if err != nil {
		return nil, err
	}
	ch := file.ChannelByNMI(nmi)
	if ch == nil {
		return nil, metering.ErrChannelNotFound
	}
	return ch, nil
}
