package reconciliation

import "context"

// SummaryRepository stores reconciliation summaries by id. The caller
// chooses backing storage; summaries are immutable once saved.
type SummaryRepository interface {
	Save(ctx context.Context, summary *ReconciliationSummary) error
	FindByID(ctx context.Context, id string) (*ReconciliationSummary, error)
	ListByNMI(ctx context.Context, nmi string, limit int) ([]*ReconciliationSummary, error)
}
