package vault

import (
	"testing"

	"github.com/celer-network/go-vault/clock"
	"github.com/celer-network/go-vault/db/memorydb"
	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	startTime     int64  = 1_700_000_000
	nativeFunding uint64 = 1_000_000_000
	userFunding   uint64 = 10_000
)

var (
	vaultProgram = common.HexToAddress("0x7661756c74")
	tokenProgram = common.HexToAddress("0x746f6b656e")
	mintAuth     = common.HexToAddress("0x6d696e74")
	acceptedMint = common.HexToAddress("0xacce97ed")
	admin        = common.HexToAddress("0xad31")
	alice        = common.HexToAddress("0xa11ce")
	bob          = common.HexToAddress("0xb0b")
)

type harness struct {
	t       *testing.T
	storage *storage.Storage
	ledger  *token.Ledger
	proc    *Processor
	clock   *clock.Manual
}

func signedBy(addrs ...common.Address) Call {
	return Call{Signers: addrs}
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithHoldings(t, admin, alice, bob)
}

// newHarnessWithHoldings funds every actor and creates accepted-asset holdings
// for owners only. alice and bob holdings receive userFunding.
func newHarnessWithHoldings(t *testing.T, owners ...common.Address) *harness {
	serializer, err := types.NewSerializer()
	require.NoError(t, err)
	resolver, err := pda.NewResolver(64)
	require.NoError(t, err)
	s := storage.NewStorage(memorydb.NewDB(), serializer, storage.DefaultRentConfig())
	ledger := token.NewLedger(tokenProgram, resolver, serializer)
	clk := clock.NewManual(startTime)
	h := &harness{
		t:       t,
		storage: s,
		ledger:  ledger,
		proc:    NewProcessor(s, ledger, resolver, clk, vaultProgram),
		clock:   clk,
	}

	b := s.Begin()
	for _, addr := range []common.Address{mintAuth, admin, alice, bob} {
		require.NoError(t, b.Fund(addr, nativeFunding))
	}
	require.NoError(t, ledger.CreateMint(b, acceptedMint, mintAuth, mintAuth, 6))
	for _, owner := range owners {
		holding, err := ledger.CreateAssociatedAccount(b, owner, acceptedMint, owner)
		require.NoError(t, err)
		if owner != admin {
			require.NoError(t, ledger.MintTo(b, acceptedMint, holding, userFunding, token.Signers{mintAuth}))
		}
	}
	require.NoError(t, b.Commit())
	return h
}

func newInitializedHarness(t *testing.T, feeBps uint16) *harness {
	h := newHarness(t)
	_, _, err := h.proc.Initialize(signedBy(admin), InitializeArgs{Admin: admin, AcceptedMint: acceptedMint, FeeBps: feeBps})
	require.NoError(t, err)
	return h
}

func (h *harness) vault() common.Address {
	addr, _, err := h.proc.VaultAddress(admin)
	require.NoError(h.t, err)
	return addr
}

func (h *harness) state() *types.VaultState {
	state, err := h.proc.Vault(admin)
	require.NoError(h.t, err)
	return state
}

func (h *harness) deposit(user common.Address, amount uint64) error {
	_, _, err := h.proc.Deposit(signedBy(user), DepositArgs{User: user, Admin: admin, Amount: amount})
	return err
}

func (h *harness) request(user common.Address, amount uint64) error {
	_, _, err := h.proc.RequestWithdrawal(signedBy(user), RequestWithdrawalArgs{User: user, Admin: admin, ReceiptAmount: amount})
	return err
}

func (h *harness) claim(user common.Address) (*Settlement, error) {
	s, _, err := h.proc.Claim(signedBy(user), ClaimArgs{User: user, Admin: admin})
	return s, err
}

func (h *harness) balance(owner common.Address, mint common.Address) uint64 {
	addr, err := h.ledger.AssociatedAddress(owner, mint)
	require.NoError(h.t, err)
	b := h.storage.Begin()
	defer b.Discard()
	exists, err := b.Exists(addr)
	require.NoError(h.t, err)
	if !exists {
		return 0
	}
	acct, err := h.ledger.Account(b, addr)
	require.NoError(h.t, err)
	return acct.Amount
}

func (h *harness) receipts(owner common.Address) uint64 {
	return h.balance(owner, h.state().ReceiptMint)
}

func (h *harness) native(addr common.Address) uint64 {
	b := h.storage.Begin()
	defer b.Discard()
	v, err := b.NativeBalance(addr)
	require.NoError(h.t, err)
	return v
}

func (h *harness) requireSolvent() {
	solvency, err := h.proc.Solvency(admin)
	require.NoError(h.t, err)
	require.True(h.t, solvency.Holds(), "total %d, held %d", solvency.TotalDeposited, solvency.HeldBalance)
}
