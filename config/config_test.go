package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/celer-network/go-vault/db/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultVaultProgram, cfg.VaultProgram())
	assert.Equal(t, DefaultTokenProgram, cfg.TokenProgram())
	assert.Equal(t, uint64(3480), cfg.RentConfig().LamportsPerByteYear)
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DB.Backend = BackendLevelDB
	cfg.DB.Dir = filepath.Join(dir, "db")
	cfg.Rent.ExemptionYears = 3
	cfg.PDA.CacheSize = 10
	require.NoError(t, Write(filepath.Join(dir, FileName+".yaml"), cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("VAULT_DB_BACKEND", BackendMemory)
	t.Setenv("VAULT_PDA_CACHESIZE", "7")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.DB.Backend)
	assert.Equal(t, 7, cfg.PDA.CacheSize)

	database, err := OpenDB(cfg)
	require.NoError(t, err)
	assert.IsType(t, &memorydb.DB{}, database)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vault.yaml"), []byte("db:\n  backend: rocks\n"), 0644))
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	cfg := Default()
	cfg.Program.Token = "nope"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidAddress)
}

func TestOpenOnDiskBackends(t *testing.T) {
	for backend, dbType := range map[string]string{BackendBadger: "badgerdb", BackendLevelDB: "leveldb"} {
		cfg := Default()
		cfg.DB.Backend = backend
		cfg.DB.Dir = t.TempDir()
		database, err := OpenDB(cfg)
		require.NoError(t, err, backend)
		assert.Equal(t, dbType, database.Type())
		require.NoError(t, database.Close())
	}
}
