package billing

import "errors"

var (
	// ErrEmptyAggregate is returned when the aggregate has no readings in
	// the billing period.
	ErrEmptyAggregate = errors.New("billing: no readings in billing period")
	// ErrNilTariff is returned when calculating without a tariff.
	ErrNilTariff = errors.New("billing: nil tariff")
	// ErrInvoiceNotFound is returned when a parsed invoice id is unknown.
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	// ErrNilInvoice is returned when saving a nil invoice envelope.
	ErrNilInvoice = errors.New("billing: nil invoice")
	// ErrEmptyFileID is returned when an envelope carries no file id.
	ErrEmptyFileID = errors.New("billing: empty file id")
)
