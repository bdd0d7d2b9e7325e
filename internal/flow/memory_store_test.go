package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUnseenUser(t *testing.T) {
	store := NewMemoryStore()

	s, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := newSession(42)
	sess.Role = RoleEntrepreneur
	sess.State = "entrepreneur:q2"
	sess.Answers["process_pain"] = "Обработка заявок"
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, RoleEntrepreneur, got.Role)
	assert.Equal(t, StateID("entrepreneur:q2"), got.State)
	assert.Equal(t, "Обработка заявок", got.Answers["process_pain"])
}

func TestMemoryStoreCopiesOnBothSides(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := newSession(42)
	sess.Answers["k"] = "v"
	require.NoError(t, store.Put(ctx, sess))

	// Mutating the caller's copy after Put must not leak into the store.
	sess.Answers["k"] = "changed"
	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Answers["k"])

	// Mutating a Get result must not leak either.
	got.Answers["k"] = "changed again"
	again, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Answers["k"])
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newSession(42)))
	require.NoError(t, store.Delete(ctx, 42))

	s, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, s)

	// Deleting an absent session is not an error.
	assert.NoError(t, store.Delete(ctx, 42))
}
