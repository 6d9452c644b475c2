package billing

import "context"

// InvoiceRepository stores parsed invoice envelopes by file id.
type InvoiceRepository interface {
	Save(ctx context.Context, envelope *ParsedInvoiceEnvelope) error
	FindByID(ctx context.Context, fileID string) (*ParsedInvoiceEnvelope, error)
}
