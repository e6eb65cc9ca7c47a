package main

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/celer-network/go-vault/clock"
	"github.com/celer-network/go-vault/config"
	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/statemachine"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/celer-network/go-vault/utils"
	"github.com/celer-network/go-vault/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
)

// node wires the storage, token ledger, vault processor and state machine
// on top of the configured database.
type node struct {
	cfg          *config.Config
	db           vaultdb.DB
	serializer   *types.Serializer
	storage      *storage.Storage
	ledger       *token.Ledger
	stateMachine *statemachine.StateMachine
	processor    *vault.Processor
}

func openNode() (*node, error) {
	cfg, err := config.Load(viper.GetString(flagConfig))
	if err != nil {
		return nil, err
	}
	serializer, err := types.NewSerializer()
	if err != nil {
		return nil, err
	}
	resolver, err := pda.NewResolver(cfg.PDA.CacheSize)
	if err != nil {
		return nil, err
	}
	database, err := config.OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s db at %s: %w", cfg.DB.Backend, cfg.DB.Dir, err)
	}
	s := storage.NewStorage(database, serializer, cfg.RentConfig())
	ledger := token.NewLedger(cfg.TokenProgram(), resolver, serializer)
	p := vault.NewProcessor(s, ledger, resolver, clock.System{}, cfg.VaultProgram())
	logger.Debug().Str("backend", cfg.DB.Backend).Str("dir", cfg.DB.Dir).Msg("node opened")
	return &node{
		cfg:          cfg,
		db:           database,
		serializer:   serializer,
		storage:      s,
		ledger:       ledger,
		stateMachine: statemachine.NewStateMachine(p, serializer),
		processor:    p,
	}, nil
}

func (n *node) Close() {
	if err := n.db.Close(); err != nil {
		logger.Warn().Err(err).Msg("close db")
	}
}

// update runs fn in one batch and commits it.
func (n *node) update(fn func(b *storage.Batch) error) error {
	b := n.storage.Begin()
	defer b.Discard()
	if err := fn(b); err != nil {
		return err
	}
	return b.Commit()
}

// view runs fn against a batch that is never committed.
func (n *node) view(fn func(b *storage.Batch) error) error {
	b := n.storage.Begin()
	defer b.Discard()
	return fn(b)
}

// submit signs tx with key and applies it through the state machine.
func (n *node) submit(tx types.Transaction, key *ecdsa.PrivateKey) (*types.StateUpdate, error) {
	signed, err := statemachine.SignTransaction(n.serializer, tx, key)
	if err != nil {
		return nil, err
	}
	return n.stateMachine.ApplyTransaction(signed)
}

func (n *node) nextNonce(actor common.Address) (uint64, error) {
	return n.stateMachine.NextNonce(actor)
}

func (n *node) mintDecimals(mint common.Address) (uint8, error) {
	var decimals uint8
	err := n.view(func(b *storage.Batch) error {
		m, err := n.ledger.Mint(b, mint)
		if err != nil {
			return err
		}
		decimals = m.Decimals
		return nil
	})
	return decimals, err
}

func loadKey() (*ecdsa.PrivateKey, common.Address, error) {
	path := viper.GetString(flagKey)
	if path == "" {
		return nil, common.Address{}, fmt.Errorf("--%s is required", flagKey)
	}
	key, err := utils.GetPrivateKeyFromKeystore(path, viper.GetString(flagPassword))
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("load key %s: %w", path, err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}

func addressFlag(name string) (common.Address, error) {
	s := viper.GetString(name)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("--%s: invalid address %q", name, s)
	}
	return common.HexToAddress(s), nil
}
