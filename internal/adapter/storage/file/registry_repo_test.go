package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-ledger-service/internal/core/domain"
)

func TestRegistryRepo_EmptyOnFirstRun(t *testing.T) {
	repo := NewRegistryRepo(t.TempDir())

	records, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistryRepo_AppendAndReload(t *testing.T) {
	repo := NewRegistryRepo(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, domain.CustomerRecord{ID: "1", VerifyKey: "aa"}))
	require.NoError(t, repo.Append(ctx, domain.CustomerRecord{ID: "2", VerifyKey: "bb"}))

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "bb", records[1].VerifyKey)
}

func TestRegistryRepo_FileIsPlainJSON(t *testing.T) {
	dir := t.TempDir()
	repo := NewRegistryRepo(dir)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, domain.CustomerRecord{ID: "1", VerifyKey: "aa"}))

	raw, err := os.ReadFile(filepath.Join(dir, registryFile))
	require.NoError(t, err)

	// Public keys are not secret; the registry stays readable for operators.
	var records []domain.CustomerRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	assert.Equal(t, "aa", records[0].VerifyKey)
}
