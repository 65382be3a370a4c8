/*
Package jsonfile persists customer records as one JSON file per customer.

PURPOSE:
  The file-per-record layout the offline ledger has always used: a data
  directory containing <customer-id>.json documents. Kept for compatibility
  with existing data directories and for deployments where SQLite is
  overkill.

ATOMICITY:
  Writes go to a temp file in the same directory followed by a rename, so a
  crash never leaves a half-written record. A per-store mutex plus the
  optimistic version check give read-modify-write safety when a customer
  submitting a payment races an admin approving one on the same record.

TOLERANT READS:
  Legacy files may contain malformed rows (string amounts, bad dates, item
  pairs). Loading decodes tolerantly and logs the diagnostics instead of
  refusing the record.

SEE ALSO:
  - rental/repository.go: the contract
  - store/sqlite: the relational implementation
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

type Repository struct {
	dir string
	mu  sync.Mutex
	log *slog.Logger
}

var _ rental.Repository = (*Repository)(nil)

func New(dir string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Repository{dir: dir, log: logger}, nil
}

func (r *Repository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *Repository) Load(_ context.Context, id string) (billing.CustomerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(id)
}

func (r *Repository) loadLocked(id string) (billing.CustomerRecord, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return billing.CustomerRecord{}, billing.ErrCustomerNotFound
		}
		return billing.CustomerRecord{}, fmt.Errorf("read record %s: %w", id, err)
	}

	record, diags, err := billing.DecodeCustomer(data)
	if err != nil {
		return billing.CustomerRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	for _, d := range diags {
		r.log.Warn("record has data-quality issues", "customer", id, "code", d.Code, "detail", d.Message)
	}
	if record.ID == "" {
		// Legacy files sometimes omit the ID field; the filename is the ID.
		record.ID = id
	}
	return record, nil
}

func (r *Repository) Save(_ context.Context, record *billing.CustomerRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record has no ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.loadLocked(record.ID)
	switch {
	case err == nil:
		if current.Version != record.Version {
			return &billing.VersionConflictError{
				CustomerID: record.ID,
				Expected:   record.Version,
				Actual:     current.Version,
			}
		}
	case errors.Is(err, billing.ErrCustomerNotFound):
		// New record.
	default:
		return err
	}

	record.Version++
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		record.Version--
		return fmt.Errorf("encode record %s: %w", record.ID, err)
	}

	tmp, err := os.CreateTemp(r.dir, record.ID+".tmp-*")
	if err != nil {
		record.Version--
		return fmt.Errorf("temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		record.Version--
		return fmt.Errorf("write record %s: %w", record.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		record.Version--
		return fmt.Errorf("close record %s: %w", record.ID, err)
	}
	if err := os.Rename(tmpName, r.path(record.ID)); err != nil {
		os.Remove(tmpName)
		record.Version--
		return fmt.Errorf("commit record %s: %w", record.ID, err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]billing.CustomerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list data dir: %w", err)
	}

	var out []billing.CustomerRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		record, err := r.loadLocked(id)
		if err != nil {
			// One unreadable file must not hide every other customer.
			r.log.Warn("skipping unreadable record file", "file", name, "error", err)
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
