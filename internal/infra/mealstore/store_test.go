package mealstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
)

func sampleRecords() []ledger.Record {
	return []ledger.Record{
		{Date: "2024-12-09", Meal: "lunch", Food: "두부", Quantity: 150, Unit: "g", Calories: 114, Protein: 12, Carbs: 2.85, Fat: 6.3, Iron: 8.1, Calc: 525},
		{Date: "2024-12-10", Meal: "분석된 식단", Food: "밥", Quantity: 200, Unit: "g", Calories: 260, Protein: 5.4, Carbs: 56},
	}
}

func exerciseStore(t *testing.T, store ledger.Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.List(ctx, "kim")
	require.NoError(t, err)
	require.Empty(t, empty)

	for _, rec := range sampleRecords() {
		require.NoError(t, store.Append(ctx, "kim", rec))
	}
	require.NoError(t, store.Append(ctx, "lee", sampleRecords()[0]))

	got, err := store.List(ctx, "kim")
	require.NoError(t, err)
	require.Equal(t, sampleRecords(), got)

	other, err := store.List(ctx, "lee")
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.List(context.Background(), "kim")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRestoreFromStore(t *testing.T) {
	store := NewMemoryStore()
	for _, rec := range sampleRecords() {
		require.NoError(t, store.Append(context.Background(), "kim", rec))
	}
	records, err := store.List(context.Background(), "kim")
	require.NoError(t, err)

	l, skipped := ledger.Restore(records)
	require.Empty(t, skipped)
	require.Equal(t, 2, l.Len())
	require.Equal(t, records[0], l.Entries()[0].ToRecord())
}
