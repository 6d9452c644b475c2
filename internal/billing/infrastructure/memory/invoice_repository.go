package memory

import (
	"context"
	"sync"

	billing "invoice-audit/internal/billing/domain"
)

// InvoiceRepository is an in-memory store for parsed invoice envelopes.
type InvoiceRepository struct {
	mu   sync.RWMutex
	data map[string]*billing.ParsedInvoiceEnvelope
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{data: make(map[string]*billing.ParsedInvoiceEnvelope)}
}

// Save persists an envelope under its file id (overwrites existing).
func (r *InvoiceRepository) Save(ctx context.Context, envelope *billing.ParsedInvoiceEnvelope) error {
	_ = ctx
	if envelope == nil {
		return billing.ErrNilInvoice
	}
	if envelope.FileID == "" {
		return billing.ErrEmptyFileID
	}
	r.mu.Lock()
	r.data[envelope.FileID] = envelope
	r.mu.Unlock()
	return nil
}

// FindByID loads an envelope, nil when absent.
func (r *InvoiceRepository) FindByID(ctx context.Context, fileID string) (*billing.ParsedInvoiceEnvelope, error) {
	_ = ctx
	r.mu.RLock()
	envelope := r.data[fileID]
	r.mu.RUnlock()
	return envelope, nil
}
