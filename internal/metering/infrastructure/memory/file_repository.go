package memory

import (
	"context"
	"sync"

	metering "invoice-audit/internal/metering/domain"
)

// FileRepository is an in-memory store for processed meter files.
type FileRepository struct {
	mu   sync.RWMutex
	data map[string]*metering.MeterFile
}

// NewFileRepository constructs a repository.
func NewFileRepository() *FileRepository {
	return &FileRepository{data: make(map[string]*metering.MeterFile)}
}

// Save persists a file (overwrites existing).
func (r *FileRepository) Save(ctx context.Context, file *metering.MeterFile) error {
	_ = ctx
	if file == nil {
		return metering.ErrNilFile
	}
	if file.ID == "" {
		return metering.ErrFileNotFound
	}
	r.mu.Lock()
	r.data[file.ID] = file
	r.mu.Unlock()
	return nil
}

// FindByID loads a file, nil when absent.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*metering.MeterFile, error) {
	_ = ctx
	r.mu.RLock()
	file := r.data[id]
	r.mu.RUnlock()
	return file, nil
}
