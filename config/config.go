// Package config loads the vault configuration from vault.yaml and VAULT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/db/badgerdb"
	"github.com/celer-network/go-vault/db/leveldb"
	"github.com/celer-network/go-vault/db/memorydb"
	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	FileName  = "vault"
	EnvPrefix = "VAULT"

	BackendMemory  = "memory"
	BackendBadger  = "badger"
	BackendLevelDB = "leveldb"
)

var (
	ErrUnknownBackend = errors.New("unknown db backend")
	ErrInvalidAddress = errors.New("invalid program address")
)

// Default program identities: "vault" and "token" left padded to 20 bytes.
var (
	DefaultVaultProgram = common.BytesToAddress([]byte("vault"))
	DefaultTokenProgram = common.BytesToAddress([]byte("token"))
)

type DBConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

type ProgramConfig struct {
	Vault string `yaml:"vault" mapstructure:"vault"`
	Token string `yaml:"token" mapstructure:"token"`
}

type RentConfig struct {
	LamportsPerByteYear uint64 `yaml:"lamportsPerByteYear" mapstructure:"lamportsPerByteYear"`
	ExemptionYears      uint64 `yaml:"exemptionYears" mapstructure:"exemptionYears"`
}

type PDAConfig struct {
	CacheSize int `yaml:"cacheSize" mapstructure:"cacheSize"`
}

type Config struct {
	DB       DBConfig      `yaml:"db" mapstructure:"db"`
	Program  ProgramConfig `yaml:"program" mapstructure:"program"`
	Rent     RentConfig    `yaml:"rent" mapstructure:"rent"`
	PDA      PDAConfig     `yaml:"pda" mapstructure:"pda"`
	Keystore string        `yaml:"keystore" mapstructure:"keystore"`
}

func Default() *Config {
	return &Config{
		DB:      DBConfig{Backend: BackendBadger, Dir: "./data"},
		Program: ProgramConfig{Vault: DefaultVaultProgram.Hex(), Token: DefaultTokenProgram.Hex()},
		Rent: RentConfig{
			LamportsPerByteYear: storage.DefaultLamportsPerByteYear,
			ExemptionYears:      storage.DefaultExemptionYears,
		},
		PDA:      PDAConfig{CacheSize: pda.DefaultCacheSize},
		Keystore: "./keystore",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("db.backend", d.DB.Backend)
	v.SetDefault("db.dir", d.DB.Dir)
	v.SetDefault("program.vault", d.Program.Vault)
	v.SetDefault("program.token", d.Program.Token)
	v.SetDefault("rent.lamportsPerByteYear", d.Rent.LamportsPerByteYear)
	v.SetDefault("rent.exemptionYears", d.Rent.ExemptionYears)
	v.SetDefault("pda.cacheSize", d.PDA.CacheSize)
	v.SetDefault("keystore", d.Keystore)
}

// Load reads vault.yaml from dir (or the working directory when dir is
// empty). A missing file is not an error, defaults and environment apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Backend {
	case BackendMemory, BackendBadger, BackendLevelDB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.DB.Backend)
	}
	for _, addr := range []string{c.Program.Vault, c.Program.Token} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	return nil
}

func (c *Config) VaultProgram() common.Address {
	return common.HexToAddress(c.Program.Vault)
}

func (c *Config) TokenProgram() common.Address {
	return common.HexToAddress(c.Program.Token)
}

func (c *Config) RentConfig() storage.RentConfig {
	return storage.RentConfig{
		LamportsPerByteYear: c.Rent.LamportsPerByteYear,
		ExemptionYears:      c.Rent.ExemptionYears,
	}
}

// Write renders cfg as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OpenDB opens the configured storage backend.
func OpenDB(cfg *Config) (vaultdb.DB, error) {
	switch cfg.DB.Backend {
	case BackendMemory:
		return memorydb.NewDB(), nil
	case BackendBadger:
		database, err := badgerdb.NewDB(cfg.DB.Dir)
		if err != nil {
			return nil, err
		}
		return database, nil
	case BackendLevelDB:
		database, err := leveldb.NewDB(cfg.DB.Dir)
		if err != nil {
			return nil, err
		}
		return database, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.DB.Backend)
	}
}
