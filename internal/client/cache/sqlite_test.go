package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avelichka/lectern/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cached_content (
  resource_class TEXT NOT NULL,
  resource_id TEXT NOT NULL,
  variant TEXT NOT NULL,
  payload BLOB NOT NULL,
  cached_at INTEGER NOT NULL,
  PRIMARY KEY (resource_class, resource_id, variant)
);
`)
	require.NoError(t, err)
	return db
}

func testAllowlist() Allowlist {
	return Allowlist{"chapter": {"translation=KJV": {}}}
}

func TestPutGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, testAllowlist())
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=KJV", []byte("in the beginning")))

	got, err := r.Get(ctx, "chapter", "GEN-1", "translation=KJV")
	require.NoError(t, err)
	assert.Equal(t, []byte("in the beginning"), got)
}

func TestPut_ReplacesExistingEntry(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, testAllowlist())
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=KJV", []byte("v1")))
	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=KJV", []byte("v2")))

	got, err := r.Get(ctx, "chapter", "GEN-1", "translation=KJV")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM cached_content`).Scan(&n))
	assert.Equal(t, 1, n, "put must replace, not accumulate")
}

func TestPut_DisallowedKeyIsSilentNoop(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, testAllowlist())
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "note", "n1", "translation=KJV", []byte("private")))
	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=NIV", []byte("restricted")))

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM cached_content`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestGet_MissingKeyReturnsNotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, testAllowlist())

	_, err := r.Get(context.Background(), "chapter", "EXO-1", "translation=KJV")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_KeysDoNotCollideAcrossVariants(t *testing.T) {
	db := setupDB(t)
	al := Allowlist{"chapter": {"translation=KJV": {}, "translation=WEB": {}}}
	r := NewSQLiteRepository(db, al)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=KJV", []byte("kjv")))
	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=WEB", []byte("web")))

	got, err := r.Get(ctx, "chapter", "GEN-1", "translation=KJV")
	require.NoError(t, err)
	assert.Equal(t, []byte("kjv"), got)

	got, err = r.Get(ctx, "chapter", "GEN-1", "translation=WEB")
	require.NoError(t, err)
	assert.Equal(t, []byte("web"), got)
}

func TestPruneOlderThan_RemovesOnlyStaleRows(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, testAllowlist())
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base.Add(-48 * time.Hour) }
	require.NoError(t, r.Put(ctx, "chapter", "GEN-1", "translation=KJV", []byte("old")))

	r.now = func() time.Time { return base }
	require.NoError(t, r.Put(ctx, "chapter", "GEN-2", "translation=KJV", []byte("fresh")))

	n, err := r.PruneOlderThan(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Get(ctx, "chapter", "GEN-1", "translation=KJV")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = r.Get(ctx, "chapter", "GEN-2", "translation=KJV")
	assert.NoError(t, err)
}
