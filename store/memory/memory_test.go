package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
	"github.com/plank/rental-engine/store/memory"
)

func TestMemory_SaveAndLoadRoundTrip(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	record := rental.NewCustomer("cust-1", "Ravi", "98765", "", decimal.NewFromInt(100))
	require.NoError(t, repo.Save(ctx, &record))

	loaded, err := repo.Load(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", loaded.Name)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestMemory_RejectsRecordWithoutID(t *testing.T) {
	repo := memory.New()

	record := billing.CustomerRecord{Name: "No ID"}
	err := repo.Save(context.Background(), &record)

	require.Error(t, err)

	records, listErr := repo.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, records, "nothing stored under an empty key")
}

func TestMemory_StaleSaveConflicts(t *testing.T) {
	repo := memory.New()
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
