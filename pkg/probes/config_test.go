package probes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librepower/csentinel/pkg/digest"
)

func TestConfigOneHashesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	rec, err := configOne(path)
	require.NoError(t, err)
	assert.True(t, rec.Exists)
	assert.Equal(t, digest.HashBytes([]byte("content")), rec.SHA256)
	assert.False(t, rec.Symlink)
}

func TestConfigOneMissingFileStillProducesRecord(t *testing.T) {
	rec, err := configOne("/nonexistent/path/xyz")
	assert.Error(t, err)
	assert.False(t, rec.Exists)
}

func TestConfigOneFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.WriteFile(target, []byte("real content"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	rec, err := configOne(link)
	require.NoError(t, err)
	assert.True(t, rec.Symlink)
	assert.True(t, rec.Exists)
	assert.Equal(t, digest.HashBytes([]byte("real content")), rec.SHA256)
}

func TestConfigAggregatesErrorCount(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok")
	require.NoError(t, os.WriteFile(ok, []byte("x"), 0o644))

	recs, errs := Config([]string{ok, "/nonexistent/a", "/nonexistent/b"})
	assert.Len(t, recs, 3)
	assert.Equal(t, 2, errs)
}
