// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "assistant.db"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	_, err = db.Get(ctx, "cart/u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Put(ctx, "cart/u1", []byte(`{"lines":[]}`)))
	value, err := db.Get(ctx, "cart/u1")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, string(value))

	require.NoError(t, db.Put(ctx, "cart/u1", []byte(`{"lines":[{"id":"p1"}]}`)))
	value, err = db.Get(ctx, "cart/u1")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[{"id":"p1"}]}`, string(value))

	require.NoError(t, db.Delete(ctx, "cart/u1"))
	_, err = db.Get(ctx, "cart/u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Delete(ctx, "cart/u1"))
}

func TestSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "assistant.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "cart/u1", []byte("persisted")))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	value, err := db.Get(ctx, "cart/u1")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(value))
}
