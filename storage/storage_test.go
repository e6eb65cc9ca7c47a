package storage

import (
	"math"
	"testing"

	"github.com/celer-network/go-vault/db/memorydb"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	program = common.HexToAddress("0x70")
	payer   = common.HexToAddress("0xa1")
	account = common.HexToAddress("0xb2")
)

func newTestStorage(t *testing.T) *Storage {
	serializer, err := types.NewSerializer()
	require.NoError(t, err)
	return NewStorage(memorydb.NewDB(), serializer, DefaultRentConfig())
}

func fund(t *testing.T, s *Storage, addr common.Address, amount uint64) {
	b := s.Begin()
	require.NoError(t, b.Fund(addr, amount))
	require.NoError(t, b.Commit())
}

func TestRentExempt(t *testing.T) {
	s := newTestStorage(t)
	rent, err := s.RentExempt(136)
	require.NoError(t, err)
	assert.Equal(t, uint64((128+136)*3480*2), rent)

	_, err = s.RentExempt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrNativeOverflow)
}

func TestCreateLoadStoreClose(t *testing.T) {
	s := newTestStorage(t)
	rent, err := s.RentExempt(8)
	require.NoError(t, err)
	fund(t, s, payer, rent)

	b := s.Begin()
	require.NoError(t, b.Create(account, program, payer, 8))
	data, err := b.Load(account, program)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), data)

	require.NoError(t, b.Store(account, program, []byte("12345678")))
	assert.ErrorIs(t, b.Store(account, program, []byte("short")), ErrSizeMismatch)
	_, err = b.Load(account, common.HexToAddress("0x71"))
	assert.ErrorIs(t, err, ErrOwnerMismatch)
	require.NoError(t, b.Commit())

	b = s.Begin()
	balance, err := b.NativeBalance(payer)
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.ErrorIs(t, b.Create(account, program, payer, 8), ErrAccountExists)

	refund := common.HexToAddress("0xc3")
	require.NoError(t, b.Close(account, program, refund))
	require.NoError(t, b.Commit())

	b = s.Begin()
	defer b.Discard()
	exists, err := b.Exists(account)
	require.NoError(t, err)
	assert.False(t, exists)
	balance, err = b.NativeBalance(refund)
	require.NoError(t, err)
	assert.Equal(t, rent, balance)
	_, err = b.Load(account, program)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateWithoutRent(t *testing.T) {
	s := newTestStorage(t)
	b := s.Begin()
	defer b.Discard()
	assert.ErrorIs(t, b.Create(account, program, payer, 8), ErrInsufficientNative)
	exists, err := b.Exists(account)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFundOverflow(t *testing.T) {
	s := newTestStorage(t)
	fund(t, s, payer, math.MaxUint64)
	b := s.Begin()
	defer b.Discard()
	assert.ErrorIs(t, b.Fund(payer, 1), ErrNativeOverflow)
}

func TestBatchRevertAndDiscard(t *testing.T) {
	s := newTestStorage(t)
	b := s.Begin()
	require.NoError(t, b.Fund(payer, 10))
	snap := b.Snapshot()
	require.NoError(t, b.Fund(payer, 5))
	require.NoError(t, b.Revert(snap))
	balance, err := b.NativeBalance(payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
	assert.ErrorIs(t, b.Revert(snap+1), ErrInvalidSnapshot)
	b.Discard()
	assert.ErrorIs(t, b.Commit(), ErrBatchClosed)

	b = s.Begin()
	defer b.Discard()
	balance, err = b.NativeBalance(payer)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestCommitConflict(t *testing.T) {
	s := newTestStorage(t)
	fund(t, s, payer, 100)

	b1 := s.Begin()
	b2 := s.Begin()
	require.NoError(t, b1.Debit(payer, 60))
	require.NoError(t, b2.Debit(payer, 60))
	require.NoError(t, b1.Commit())
	assert.ErrorIs(t, b2.Commit(), ErrConflict)

	b := s.Begin()
	defer b.Discard()
	balance, err := b.NativeBalance(payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)
}

func TestNonce(t *testing.T) {
	s := newTestStorage(t)
	b := s.Begin()
	n, err := b.Nonce(payer)
	require.NoError(t, err)
	assert.Zero(t, n)
	b.SetNonce(payer, 3)
	require.NoError(t, b.Commit())

	b = s.Begin()
	defer b.Discard()
	n, err = b.Nonce(payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestEvents(t *testing.T) {
	s := newTestStorage(t)
	vault := common.HexToAddress("0x11")
	other := common.HexToAddress("0x12")

	b := s.Begin()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.AppendEvent(&types.Event{Kind: types.EventDeposited, Vault: vault, Amount: uint64(i + 1)}))
	}
	require.NoError(t, b.AppendEvent(&types.Event{Kind: types.EventDeposited, Vault: other, Amount: 9}))
	require.NoError(t, b.Commit())

	events, err := s.Events(vault, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, uint64(i+1), e.Amount)
	}

	events, err = s.Events(vault, 2, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(2), events[0].Seq)

	events, err = s.Events(other, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Seq)
}

func TestPruneEvents(t *testing.T) {
	s := newTestStorage(t)
	vault := common.HexToAddress("0x11")
	other := common.HexToAddress("0x12")

	b := s.Begin()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.AppendEvent(&types.Event{Kind: types.EventDeposited, Vault: vault, Amount: uint64(i + 1)}))
	}
	require.NoError(t, b.AppendEvent(&types.Event{Kind: types.EventDeposited, Vault: other, Amount: 9}))
	require.NoError(t, b.Commit())

	pruned, err := s.PruneEvents(vault, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, pruned)

	pruned, err = s.PruneEvents(vault, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, pruned)

	events, err := s.Events(vault, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(4), events[0].Seq)

	events, err = s.Events(other, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	b = s.Begin()
	e := &types.Event{Kind: types.EventClaimed, Vault: vault}
	require.NoError(t, b.AppendEvent(e))
	require.NoError(t, b.Commit())
	assert.Equal(t, uint64(6), e.Seq)
}
