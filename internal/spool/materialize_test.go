package spool

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeUsesSuppliedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d00042-001")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	job, err := Materialize(path, bytes.NewReader([]byte("ignored")), "")
	require.NoError(t, err)
	assert.Equal(t, path, job.Path)
	assert.False(t, job.Owned())

	require.NoError(t, job.Cleanup())
	_, err = os.Stat(path)
	assert.NoError(t, err, "caller's file must survive cleanup")
}

func TestMaterializeCopiesStdinByteForByte(t *testing.T) {
	payload := make([]byte, 256<<10)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	dir := t.TempDir()
	job, err := Materialize("", bytes.NewReader(payload), dir)
	require.NoError(t, err)
	assert.True(t, job.Owned())
	assert.Equal(t, dir, filepath.Dir(job.Path))
	assert.EqualValues(t, len(payload), job.Size)

	got, err := os.ReadFile(job.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got))

	info, err := os.Stat(job.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, job.Cleanup())
	_, err = os.Stat(job.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, job.Cleanup(), "second cleanup is a no-op")
}

func TestMaterializeEmptyStdin(t *testing.T) {
	job, err := Materialize("", bytes.NewReader(nil), t.TempDir())
	require.NoError(t, err)
	defer job.Cleanup()

	info, err := os.Stat(job.Path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestMaterializeDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := Materialize("", bytes.NewReader([]byte("a")), dir)
	require.NoError(t, err)
	b, err := Materialize("", bytes.NewReader([]byte("b")), dir)
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	require.NoError(t, a.Cleanup())
	require.NoError(t, b.Cleanup())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe broken") }

func TestMaterializeReadErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Materialize("", io.MultiReader(bytes.NewReader([]byte("partial")), failingReader{}), dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterializeWithoutInput(t *testing.T) {
	_, err := Materialize("", nil, t.TempDir())
	assert.Error(t, err)
}
