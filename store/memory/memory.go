// Package memory provides an in-memory Repository for tests and demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

// =============================================================================
// MEMORY REPOSITORY
// =============================================================================

type Repository struct {
	mu      sync.RWMutex
	records map[string]billing.CustomerRecord
}

var _ rental.Repository = (*Repository)(nil)

func New() *Repository {
	return &Repository{records: make(map[string]billing.CustomerRecord)}
}

func (r *Repository) Load(_ context.Context, id string) (billing.CustomerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return billing.CustomerRecord{}, billing.ErrCustomerNotFound
	}
	return record.Clone(), nil
}

// Save stores the record after an optimistic version check and bumps the
// version. New records must carry version 0.
func (r *Repository) Save(_ context.Context, record *billing.CustomerRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record has no ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[record.ID]
	if exists && current.Version != record.Version {
		return &billing.VersionConflictError{
			CustomerID: record.ID,
			Expected:   record.Version,
			Actual:     current.Version,
		}
	}
	record.Version++
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *Repository) List(_ context.Context) ([]billing.CustomerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]billing.CustomerRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
