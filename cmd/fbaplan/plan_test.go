package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fbaplan/backend-go/internal/ingest"
)

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_mtr.csv"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_mtr.zip"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	single := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, os.WriteFile(single, []byte("l"), 0644))

	files, err := readInputs([]string{dir, single})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a_mtr.zip", files[0].Name)
	assert.Equal(t, "b_mtr.csv", files[1].Name)
	assert.Equal(t, "ledger.xlsx", files[2].Name)
	assert.Equal(t, []byte("l"), files[2].Data)

	_, err = readInputs([]string{t.TempDir()})
	assert.ErrorIs(t, err, ingest.ErrNoInput)

	_, err = readInputs([]string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 90, orDefault(0, 90))
	assert.Equal(t, 7, orDefault(7, 90))
}
