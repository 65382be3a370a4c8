package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
	"github.com/plank/rental-engine/store/jsonfile"
)

func newTestRepo(t *testing.T) *jsonfile.Repository {
	t.Helper()
	repo, err := jsonfile.New(t.TempDir(), nil)
	require.NoError(t, err)
	return repo
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestJSONFile_SaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := rental.NewCustomer("cust-1", "Ravi", "98765", "Main Road", money("250.50"))
	require.NoError(t, rental.AddItem(&record, "Plate", money("50")))
	require.NoError(t, rental.AddTransaction(&record, billing.NewDate(2024, time.January, 1), "Plate", 2))
	_, err := rental.RecordPayment(&record, billing.NewDate(2024, time.January, 3), money("100"), rental.MethodCash, "", "")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &record))

	loaded, err := repo.Load(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", loaded.Name)
	assert.True(t, loaded.PreviousBalance.Equal(money("250.50")))
	require.Len(t, loaded.Transactions, 1)
	require.Len(t, loaded.PaymentHistory, 1)
	assert.Equal(t, billing.StatusApproved, loaded.PaymentHistory[0].Status)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestJSONFile_UnknownCustomer(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load(context.Background(), "nope")

	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestJSONFile_StaleSaveConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := rental.NewCustomer("cust-1", "Ravi", "", "", decimal.Zero)
	require.NoError(t, repo.Save(ctx, &record))

	first, err := repo.Load(ctx, "cust-1")
	require.NoError(t, err)
	second, err := repo.Load(ctx, "cust-1")
	require.NoError(t, err)

	first.Name = "Ravi K"
	require.NoError(t, repo.Save(ctx, &first))

	second.Name = "Someone Else"
	err = repo.Save(ctx, &second)

	assert.ErrorIs(t, err, billing.ErrConcurrentModification)
}

func TestJSONFile_ReadsLegacyRecordTolerantly(t *testing.T) {
	// GIVEN: a hand-written legacy file with item pairs, a malformed
	//        transaction, and no version field
	// WHEN: loading
	// THEN: good rows survive and the filename supplies the missing ID

	dir := t.TempDir()
	legacy := []byte(`{
		"name": "Old Customer",
		"previous_balance": "750",
		"items": [["Plate", 50]],
		"transactions": [
			{"date": "2024-01-01", "item": "Plate", "qty": 2},
			{"date": "not-a-date", "item": "Plate", "qty": 1}
		],
		"payment_history": [{"id": "p1", "amount": 200, "status": "approved"}]
	}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy-1.json"), legacy, 0o644))

	repo, err := jsonfile.New(dir, nil)
	require.NoError(t, err)

	loaded, err := repo.Load(context.Background(), "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, "legacy-1", loaded.ID)
	assert.Len(t, loaded.Transactions, 1, "malformed transaction is skipped")
	assert.True(t, loaded.PreviousBalance.Equal(money("750")))
}

func TestJSONFile_ListSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := jsonfile.New(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	record := rental.NewCustomer("good", "Good", "", "", decimal.Zero)
	require.NoError(t, repo.Save(ctx, &record))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{broken"), 0o644))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].ID)
}
