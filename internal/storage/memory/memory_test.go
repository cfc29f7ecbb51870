package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivefin/internal/core"
	"drivefin/internal/storage"
)

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	txs := storage.Transactions(s)

	for i, id := range []string{"b", "a", "c"} {
		created := base
		if id == "c" {
			created = base.Add(time.Duration(i) * time.Hour)
		}
		require.NoError(t, txs.Create(ctx, core.Transaction{ID: id, Amount: 1, CreatedAt: created}))
	}

	list, err := txs.List(ctx)
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, tx := range list {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, storage.KindGoals, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, storage.KindGoals, "missing"), storage.ErrNotFound)

	doc := storage.Document{Kind: storage.KindGoals, ID: "g1", Body: []byte(`{}`)}
	require.NoError(t, s.Create(ctx, doc))
	assert.ErrorIs(t, s.Create(ctx, doc), storage.ErrAlreadyExists)
	assert.Error(t, s.Put(ctx, storage.Document{Kind: "wallets", ID: "w"}))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Put(ctx, storage.Document{Kind: storage.KindUsers, ID: "u", Body: []byte(`{"a":1}`)}))

	doc, err := s.Get(ctx, storage.KindUsers, "u")
	require.NoError(t, err)
	doc.Body[0] = 'X'

	again, err := s.Get(ctx, storage.KindUsers, "u")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again.Body))
}
