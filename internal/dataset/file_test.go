package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "provence_data.csv"), []byte(provenceCSV), 0o644))

	l := NewFileLoader(dir, nil)

	ds, err := l.Load(context.Background(), "provence")
	require.NoError(t, err)
	assert.Len(t, ds, 2)

	ds, err = l.Load(context.Background(), "aquitaine")
	require.NoError(t, err, "a missing file is not an error")
	assert.Empty(t, ds)
}

func TestFileLoader_UnreadableSource(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be cannot be read as CSV.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "provence_data.csv"), 0o755))

	_, err := NewFileLoader(dir, nil).Load(context.Background(), "provence")
	assert.Error(t, err)
}
