package vault

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolvencyAcrossRandomSequence(t *testing.T) {
	h := newInitializedHarness(t, 37)
	rng := rand.New(rand.NewSource(7))
	users := []common.Address{alice, bob}
	hasTicket := map[common.Address]bool{}

	for i := 0; i < 200; i++ {
		user := users[rng.Intn(len(users))]
		switch rng.Intn(3) {
		case 0:
			amount := uint64(rng.Intn(300))
			if err := h.deposit(user, amount); err != nil {
				assert.ErrorIs(t, err, token.ErrInsufficientFunds)
			}
		case 1:
			amount := uint64(rng.Intn(300))
			err := h.request(user, amount)
			switch {
			case err == nil:
				hasTicket[user] = true
			case hasTicket[user]:
				assert.True(t, errors.Is(err, ErrTicketExists) || errors.Is(err, ErrInsufficientBalance), err.Error())
			default:
				assert.ErrorIs(t, err, ErrInsufficientBalance)
			}
		case 2:
			h.clock.Set(h.clock.Now() + int64(rng.Intn(int(CooldownSeconds))))
			_, err := h.claim(user)
			if err == nil {
				hasTicket[user] = false
			} else if hasTicket[user] {
				assert.ErrorIs(t, err, ErrCooldownNotElapsed)
			} else {
				assert.ErrorIs(t, err, ErrNoPendingWithdrawal)
			}
		}
		h.requireSolvent()
	}

	solvency, err := h.proc.Solvency(admin)
	require.NoError(t, err)
	held := solvency.HeldBalance
	total := held + h.balance(alice, acceptedMint) + h.balance(bob, acceptedMint) + h.balance(admin, acceptedMint)
	assert.Equal(t, 2*userFunding, total, "no asset is created or lost")
}

func TestConcurrentDeposits(t *testing.T) {
	h := newInitializedHarness(t, 0)
	var wg sync.WaitGroup
	for _, user := range []common.Address{alice, bob} {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(user common.Address) {
				defer wg.Done()
				assert.NoError(t, h.deposit(user, 1))
			}(user)
		}
	}
	wg.Wait()
	assert.Equal(t, uint64(40), h.state().TotalDeposited)
	assert.Equal(t, uint64(20), h.receipts(alice))
	assert.Equal(t, uint64(20), h.receipts(bob))
	h.requireSolvent()
}

func TestConcurrentVaultsSharingAHolding(t *testing.T) {
	h := newInitializedHarness(t, 0)
	admin2 := common.HexToAddress("0xad32")
	b := h.storage.Begin()
	require.NoError(t, b.Fund(admin2, nativeFunding))
	require.NoError(t, b.Commit())
	_, _, err := h.proc.Initialize(signedBy(admin2), InitializeArgs{Admin: admin2, AcceptedMint: acceptedMint})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		settled uint64
	)
	for _, vaultAdmin := range []common.Address{admin, admin2} {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(vaultAdmin common.Address) {
				defer wg.Done()
				_, _, err := h.proc.Deposit(signedBy(alice), DepositArgs{User: alice, Admin: vaultAdmin, Amount: 1})
				if err != nil {
					assert.ErrorIs(t, err, storage.ErrConflict)
					return
				}
				lock.Lock()
				settled++
				lock.Unlock()
			}(vaultAdmin)
		}
	}
	wg.Wait()

	first, err := h.proc.Solvency(admin)
	require.NoError(t, err)
	second, err := h.proc.Solvency(admin2)
	require.NoError(t, err)
	assert.True(t, first.Holds())
	assert.True(t, second.Holds())
	assert.Equal(t, settled, first.TotalDeposited+second.TotalDeposited)
	assert.Equal(t, userFunding-settled, h.balance(alice, acceptedMint))
}
