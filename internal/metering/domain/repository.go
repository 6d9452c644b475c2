package metering

import "context"

// FileRepository stores processed meter files by id. Implementations
// choose backing storage and lifecycle; the caller owns the id.
type FileRepository interface {
	Save(ctx context.Context, file *MeterFile) error
	FindByID(ctx context.Context, id string) (*MeterFile, error)
}
