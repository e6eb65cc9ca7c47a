package vault

import (
	"testing"

	"github.com/celer-network/go-vault/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	h := newHarness(t)
	before := h.native(admin)

	state, events, err := h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint, FeeBps: 50})
	require.NoError(t, err)
	assert.Equal(t, admin, state.Admin)
	assert.Equal(t, acceptedMint, state.AcceptedMint)
	assert.Zero(t, state.TotalDeposited)
	assert.Equal(t, uint16(50), state.FeeBps)
	assert.False(t, state.IsPaused)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Seq)

	vault, bump, err := h.proc.VaultAddress(admin)
	require.NoError(t, err)
	assert.Equal(t, bump, state.Bump)
	heldBalance, heldBump, err := h.proc.HeldBalanceAddress(vault)
	require.NoError(t, err)
	assert.Equal(t, heldBump, state.VaultTokenBump)
	assert.Equal(t, state, h.state())

	b := h.storage.Begin()
	defer b.Discard()
	receipt, err := h.ledger.Mint(b, state.ReceiptMint)
	require.NoError(t, err)
	assert.Equal(t, vault, receipt.MintAuthority)
	assert.Equal(t, uint8(6), receipt.Decimals)
	assert.Zero(t, receipt.Supply)

	held, err := h.ledger.Account(b, heldBalance)
	require.NoError(t, err)
	assert.Equal(t, vault, held.Owner)
	assert.Equal(t, acceptedMint, held.Mint)

	assert.Less(t, h.native(admin), before)
}

func TestInitializeTwiceFails(t *testing.T) {
	h := newInitializedHarness(t, 0)
	_, _, err := h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint, FeeBps: 10})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.ErrorIs(t, err, storage.ErrAccountExists)
	assert.Zero(t, h.state().FeeBps)
}

func TestInitializeRejects(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.proc.Initialize(signedBy(alice), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint, FeeBps: 10001})
	assert.ErrorIs(t, err, ErrInvalidFee)

	_, _, err = h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: common.HexToAddress("0xdead")})
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	poor := common.HexToAddress("0x9002")
	_, _, err = h.proc.Initialize(signedBy(poor), InitializeArgs{Admin: poor, AcceptedMint: acceptedMint})
	assert.ErrorIs(t, err, storage.ErrInsufficientNative)

	_, err = h.proc.Vault(admin)
	assert.ErrorIs(t, err, ErrVaultNotFound)
	_, err = h.proc.Vault(poor)
	assert.ErrorIs(t, err, ErrVaultNotFound)
}

type delegatedAuthorities map[common.Address]common.Address

func (d delegatedAuthorities) Resolve(admin common.Address) Authority {
	if key, ok := d[admin]; ok {
		return SingleKey(key)
	}
	return SingleKey(admin)
}

func TestAuthorityResolver(t *testing.T) {
	h := newHarness(t)
	operator := common.HexToAddress("0x0be7")
	h.proc.SetAuthorityResolver(delegatedAuthorities{admin: operator})

	_, _, err := h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = h.proc.Initialize(signedBy(operator), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint})
	require.NoError(t, err)

	_, _, err = h.proc.SetPaused(signedBy(operator), SetPausedArgs{Admin: admin, Paused: true})
	require.NoError(t, err)
	assert.True(t, h.state().IsPaused)
}

func TestDerivedAddresses(t *testing.T) {
	h := newHarness(t)
	v1, _, err := h.proc.VaultAddress(admin)
	require.NoError(t, err)
	v2, _, err := h.proc.VaultAddress(alice)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	t1, _, err := h.proc.TicketAddress(alice, v1)
	require.NoError(t, err)
	t2, _, err := h.proc.TicketAddress(bob, v1)
	require.NoError(t, err)
	t3, _, err := h.proc.TicketAddress(alice, v2)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
	assert.NotEqual(t, t1, t3)
}

func TestGuardAbortsOperation(t *testing.T) {
	h := newHarness(t)
	call := signedBy(admin)
	call.Guard = func(b *storage.Batch) error { return ErrUnauthorized }
	_, _, err := h.proc.Initialize(call, InitializeArgs{Admin: admin, AcceptedMint: acceptedMint})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = h.proc.Vault(admin)
	assert.ErrorIs(t, err, ErrVaultNotFound)

	call.Guard = func(b *storage.Batch) error {
		b.SetNonce(admin, 1)
		return nil
	}
	_, _, err = h.proc.Initialize(call, InitializeArgs{Admin: admin, AcceptedMint: acceptedMint})
	require.NoError(t, err)
	b := h.storage.Begin()
	defer b.Discard()
	nonce, err := b.Nonce(admin)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}
