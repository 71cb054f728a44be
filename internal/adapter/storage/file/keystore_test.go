package file

import (
	"context"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeystore_GeneratesOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	ks := NewKeystore(dir)

	pub, priv, err := ks.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, pub, ed25519.PublicKeySize)
	assert.Len(t, priv, ed25519.PrivateKeySize)

	_, err = os.Stat(filepath.Join(dir, identityKeyFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, identityPubFile))
	assert.NoError(t, err)
}

func TestKeystore_LoadsSameKeypairAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	pub1, priv1, err := NewKeystore(dir).Load(context.Background())
	require.NoError(t, err)

	pub2, priv2, err := NewKeystore(dir).Load(context.Background())
	require.NoError(t, err)

	assert.True(t, pub1.Equal(pub2))
	assert.True(t, priv1.Equal(priv2))
}

func TestKeystore_SignaturesVerifyAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	_, priv, err := NewKeystore(dir).Load(context.Background())
	require.NoError(t, err)
	signature := ed25519.Sign(priv, []byte("chain entry digest"))

	pub, _, err := NewKeystore(dir).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, []byte("chain entry digest"), signature))
}

func TestKeystore_RejectsCorruptKeyFile(t *testing.T) {
	dir := t.TempDir()
	ks := NewKeystore(dir)

	_, _, err := ks.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, identityKeyFile), []byte("not-hex"), 0o600))
	_, _, err = ks.Load(context.Background())
	assert.Error(t, err)
}
