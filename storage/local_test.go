package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundtrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	fileID := uuid.New()
	content := "DUE DILIGENCE CONCLUSION\n"

	key, err := store.Upload(ctx, fileID, "due_diligence_GR-1.txt", strings.NewReader(content))
	require.NoError(t, err)
	assert.Contains(t, key, fileID.String())

	reader, err := store.Download(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestLocalStorageDownloadMissingKey(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "reports/2026/01/nope.txt")
	assert.ErrorContains(t, err, "file not found")
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key, err := store.Upload(ctx, uuid.New(), "report.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Download(ctx, key)
	assert.Error(t, err)

	// Deleting an already-deleted key is fine.
	assert.NoError(t, store.Delete(ctx, key))
}

func TestArtifactKeySanitizesFilename(t *testing.T) {
	fileID := uuid.New()
	key := artifactKey(fileID, "my report/v1 final.txt")

	assert.Contains(t, key, "my_report_v1_final.txt")
	assert.NotContains(t, key, " ")
	assert.True(t, strings.HasPrefix(key, "reports/"))
}
