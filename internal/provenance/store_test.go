package provenance

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndQuery(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Record{
		RunID:       "run-1",
		Requirement: "simplewheel",
		Wheel:       "simplewheel-1.0-py3-none-any.whl",
		SHA256:      "aa11",
		Size:        2048,
		Outcome:     OutcomeBuilt,
	}))
	require.NoError(t, store.Append(ctx, Record{
		RunID:       "run-1",
		Requirement: "brokenpkg",
		Outcome:     OutcomeFailed,
	}))
	require.NoError(t, store.Append(ctx, Record{
		RunID:       "run-2",
		Requirement: "simplewheel",
		Wheel:       "simplewheel-1.1-py3-none-any.whl",
		SHA256:      "bb22",
		Size:        4096,
		Outcome:     OutcomeBuilt,
	}))

	byRun, err := store.ByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	require.Equal(t, "simplewheel", byRun[0].Requirement)
	require.Equal(t, OutcomeBuilt, byRun[0].Outcome)
	require.Equal(t, int64(2048), byRun[0].Size)
	require.Equal(t, OutcomeFailed, byRun[1].Outcome)

	byReq, err := store.ByRequirement(ctx, "simplewheel")
	require.NoError(t, err)
	require.Len(t, byReq, 2)
	require.Equal(t, "run-2", byReq[1].RunID)
}

func TestStore_EmptyRun(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	records, err := store.ByRun(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestStore_FileBacked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "provenance.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), Record{
		RunID:       "run-1",
		Requirement: "simplewheel",
		Outcome:     OutcomeBuilt,
	}))
	require.NoError(t, store.Close())

	// Records survive reopen.
	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
}
