package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "database.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "file", fs.Name())

	doc, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"conversations":[],"roles":[],"countryBans":[],"ads":[]}`, string(doc))

	require.NoError(t, fs.Save(context.Background(), []byte(`{"users":[{"id":"u"}],"conversations":[]}`)))

	doc, err = fs.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[{"id":"u"}],"conversations":[]}`, string(doc))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	// An existing document is not overwritten on open.
	again, err := NewFileStore(path)
	require.NoError(t, err)
	doc, err = again.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"id":"u"`)
}

func TestRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0, "messenger/database.json")
	assert.Error(t, err)
}

func TestBackup(t *testing.T) {
	src, err := NewFileStore(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)
	require.NoError(t, src.Save(context.Background(), []byte(`{"users":[],"conversations":[]}`)))

	dir := filepath.Join(t.TempDir(), "backups")
	b, err := NewBackup(src, BackupConfig{Dir: dir, Keep: 2})
	require.NoError(t, err)
	assert.Equal(t, "0 2 * * *", b.cfg.Cron)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return now }

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := b.RunOnce(context.Background())
		require.NoError(t, err)
		paths = append(paths, path)
		now = now.Add(time.Hour)
	}
	assert.Equal(t, "database-20260102T030405.000.json", filepath.Base(paths[0]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "only the newest backups are kept")
	assert.Equal(t, filepath.Base(paths[1]), entries[0].Name())
	assert.Equal(t, filepath.Base(paths[2]), entries[1].Name())

	raw, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"conversations":[]}`, string(raw))
}

func TestBackupRejectsBadCron(t *testing.T) {
	_, err := NewBackup(nil, BackupConfig{Cron: "every day", Dir: t.TempDir()})
	assert.Error(t, err)
}
