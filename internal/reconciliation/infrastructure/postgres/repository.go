package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	reconciliation "invoice-audit/internal/reconciliation/domain"
)

// SummaryRepository persists reconciliation summaries in Postgres. The
// full summary travels as a JSON payload column next to the indexed
// lookup fields.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// EnsureSchema creates the summaries table if missing.
func (r *SummaryRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("reconciliation repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS reconciliation_summaries (
	id TEXT PRIMARY KEY,
	nmi TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	overall_status TEXT NOT NULL,
	payload JSONB NOT NULL,
	reconciled_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_reconciliation_summaries_nmi
ON reconciliation_summaries (nmi, reconciled_at DESC)`)
	return err
}

// Save inserts a summary.
func (r *SummaryRepository) Save(ctx context.Context, summary *reconciliation.ReconciliationSummary) error {
	if r == nil || r.db == nil {
		return errors.New("reconciliation repo: nil db")
	}
	if summary == nil {
		return reconciliation.ErrNilSummary
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO reconciliation_summaries (
	id, nmi, invoice_number, overall_status, payload, reconciled_at
) VALUES (
	$1,$2,$3,$4,$5,$6
)`,
		summary.ID, summary.NMI, summary.InvoiceNumber, string(summary.OverallStatus), payload, summary.ReconciledAt.UTC())
	return err
}

// FindByID returns a summary by id, nil when absent.
func (r *SummaryRepository) FindByID(ctx context.Context, id string) (*reconciliation.ReconciliationSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reconciliation repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT payload FROM reconciliation_summaries WHERE id = $1`, id)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decodeSummary(payload)
}

// ListByNMI returns up to limit summaries for an NMI, newest first.
func (r *SummaryRepository) ListByNMI(ctx context.Context, nmi string, limit int) ([]*reconciliation.ReconciliationSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reconciliation repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT payload FROM reconciliation_summaries
WHERE nmi = $1
ORDER BY reconciled_at DESC
LIMIT $2`, nmi, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*reconciliation.ReconciliationSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		summary, err := decodeSummary(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeSummary(payload []byte) (*reconciliation.ReconciliationSummary, error) {
	var summary reconciliation.ReconciliationSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	summary.ReconciledAt = summary.ReconciledAt.UTC()
	return &summary, nil
}
