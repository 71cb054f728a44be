package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"secure-ledger-service/internal/core/domain"
)

const registryFile = "customers.json"

// RegistryRepo implements ports.RegistryRepository as a plain JSON file.
// Public keys are not secret, so unlike the ledger blob the registry is
// stored unencrypted.
type RegistryRepo struct {
	dir string
}

// NewRegistryRepo creates a RegistryRepo rooted at dir.
func NewRegistryRepo(dir string) *RegistryRepo {
	return &RegistryRepo{dir: dir}
}

// Load reads all customer records. A missing file is an empty registry.
func (r *RegistryRepo) Load(ctx context.Context) ([]domain.CustomerRecord, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, registryFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading customer registry: %w", err)
	}

	var records []domain.CustomerRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing customer registry: %w", err)
	}
	return records, nil
}

// Append adds one record and rewrites the registry file.
func (r *RegistryRepo) Append(ctx context.Context, record domain.CustomerRecord) error {
	records, err := r.Load(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	if err := ensureDir(r.dir); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing customer registry: %w", err)
	}
	if err := atomicWrite(filepath.Join(r.dir, registryFile), raw, 0o644); err != nil {
		return fmt.Errorf("writing customer registry: %w", err)
	}
	return nil
}
