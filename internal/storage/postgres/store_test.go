package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/core"
	"drivefin/internal/storage"
)

// Runs only when DRIVEFIN_TEST_DATABASE_URL points at a disposable database.
func TestStore_Integration(t *testing.T) {
	url := os.Getenv("DRIVEFIN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DRIVEFIN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	id := "it-" + time.Now().Format("150405.000000000")
	now := time.Now().UTC().Truncate(time.Microsecond)
	goals := storage.Goals(s)
	g := core.Goal{ID: id, Title: "Integração", TargetValue: 10, CreatedAt: now, UpdatedAt: now}

	require.NoError(t, goals.Create(ctx, g))
	t.Cleanup(func() { _ = goals.Delete(context.Background(), id) })
	assert.ErrorIs(t, goals.Create(ctx, g), storage.ErrAlreadyExists)

	got, err := goals.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Integração", got.Title)

	_, err = goals.Get(ctx, id+"-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SetPref(ctx, id, "v"))
	v, ok, err := s.GetPref(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, s.DeletePref(ctx, id))
}
