package metering

import "errors"

var (
	// ErrUnparseableContent is returned when file content cannot be tokenized into rows.
	ErrUnparseableContent = errors.New("metering: content cannot be tokenized")
	// ErrChannelNotFound is returned when an NMI has no channel in the file.
	ErrChannelNotFound = errors.New("metering: channel not found")
	// ErrFileNotFound is returned when a processed file id is unknown.
	ErrFileNotFound = errors.New("metering: file not found")
	// ErrInvalidDateRange is returned when a date range is zero or inverted.
	ErrInvalidDateRange = errors.New("metering: invalid date range")
	// ErrNilFile is returned when saving a nil file.
	ErrNilFile = errors.New("metering: nil file")
)
