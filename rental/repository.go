package rental

import (
	"context"

	"github.com/plank/rental-engine/billing"
)

// =============================================================================
// REPOSITORY - persistence contract for customer records
// =============================================================================

// Repository abstracts customer record persistence. The engine itself has no
// opinion on storage; it only assumes it receives a consistent snapshot per
// call. Implementations must provide read-modify-write atomicity per record:
// Save performs an optimistic version check and returns
// billing.ErrConcurrentModification (wrapped in a VersionConflictError) when
// the stored version no longer matches the snapshot's, because a customer
// submitting a payment and an admin approving one can race on the same
// record.
//
// Load returns billing.ErrCustomerNotFound for unknown IDs. Save bumps the
// record's version on success.
type Repository interface {
	Load(ctx context.Context, id string) (billing.CustomerRecord, error)
	Save(ctx context.Context, record *billing.CustomerRecord) error
	List(ctx context.Context) ([]billing.CustomerRecord, error)
}

// Update loads a record, applies fn, and saves. On a version conflict it
// reloads and retries, since the mutation functions in this package are safe
// to reapply to a fresh snapshot.
func Update(ctx context.Context, repo Repository, id string, attempts int, fn func(*billing.CustomerRecord) error) (billing.CustomerRecord, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		record, err := repo.Load(ctx, id)
		if err != nil {
			return billing.CustomerRecord{}, err
		}
		if err := fn(&record); err != nil {
			return billing.CustomerRecord{}, err
		}
		if err := repo.Save(ctx, &record); err != nil {
			if billing.IsRetryable(err) {
				lastErr = err
				continue
			}
			return billing.CustomerRecord{}, err
		}
		return record, nil
	}
	return billing.CustomerRecord{}, lastErr
}
