package main

import (
	"testing"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func openTestNode(t *testing.T) *node {
	t.Setenv("VAULT_DB_BACKEND", "memory")
	viper.Set(flagConfig, t.TempDir())
	t.Cleanup(viper.Reset)

	n, err := openNode()
	require.NoError(t, err)
	t.Cleanup(n.Close)
	return n
}

func TestInitializeThroughStateMachine(t *testing.T) {
	n := openTestNode(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	admin := crypto.PubkeyToAddress(key.PublicKey)
	mint := common.HexToAddress("0x1000000000000000000000000000000000000001")

	require.NoError(t, n.update(func(b *storage.Batch) error {
		if err := b.Fund(admin, 1_000_000_000); err != nil {
			return err
		}
		return n.ledger.CreateMint(b, mint, admin, admin, 6)
	}))

	build := func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
		return &types.InitializeTransaction{Admin: signer, AcceptedMint: mint, FeeBps: 50, Nonce: nonce}, nil
	}
	require.NoError(t, runTx(n, key, admin, build))

	viper.Set(flagAdmin, admin.Hex())
	gotAdmin, state, err := vaultFlag(n)
	require.NoError(t, err)
	require.Equal(t, admin, gotAdmin)
	require.Equal(t, mint, state.AcceptedMint)
	require.Equal(t, uint16(50), state.FeeBps)

	decimals, err := n.mintDecimals(mint)
	require.NoError(t, err)
	require.Equal(t, uint8(6), decimals)

	nonce, err := n.nextNonce(admin)
	require.NoError(t, err)
	require.Equal(t, uint64(2), nonce)
}

func TestAddressFlag(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set(flagTo, "not-an-address")
	_, err := addressFlag(flagTo)
	require.Error(t, err)

	viper.Set(flagTo, "0x00000000000000000000000000000000000000aa")
	addr, err := addressFlag(flagTo)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xaa"), addr)
}
