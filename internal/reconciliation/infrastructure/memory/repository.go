package memory

import (
	"context"
	"sort"
	"sync"

	reconciliation "invoice-audit/internal/reconciliation/domain"
)

// SummaryRepository is an in-memory store for reconciliation summaries.
type SummaryRepository struct {
	mu   sync.RWMutex
	data map[string]*reconciliation.ReconciliationSummary
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{data: make(map[string]*reconciliation.ReconciliationSummary)}
}

// Save persists a summary under its id.
func (r *SummaryRepository) Save(ctx context.Context, summary *reconciliation.ReconciliationSummary) error {
	_ = ctx
	if summary == nil {
		return reconciliation.ErrNilSummary
	}
	r.mu.Lock()
	r.data[summary.ID] = summary
	r.mu.Unlock()
	return nil
}

// FindByID loads a summary, nil when absent.
func (r *SummaryRepository) FindByID(ctx context.Context, id string) (*reconciliation.ReconciliationSummary, error) {
	_ = ctx
	r.mu.RLock()
	summary := r.data[id]
	r.mu.RUnlock()
	return summary, nil
}

// ListByNMI returns up to limit summaries for an NMI, newest first.
func (r *SummaryRepository) ListByNMI(ctx context.Context, nmi string, limit int) ([]*reconciliation.ReconciliationSummary, error) {
	_ = ctx
	r.mu.RLock()
	var result []*reconciliation.ReconciliationSummary
	for _, summary := range r.data {
		if summary.NMI == nmi {
			result = append(result, summary)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].ReconciledAt.After(result[j].ReconciledAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
