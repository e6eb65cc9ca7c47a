// Package vault implements the custodial vault: Initialize, Deposit,
// RequestWithdrawal, Claim and SetPaused. Every operation runs in one storage
// batch and either commits entirely or leaves no trace.
package vault

import (
	"errors"
	"fmt"

	"github.com/celer-network/go-vault/clock"
	"github.com/celer-network/go-vault/log"
	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/celer-network/go-vault/utils"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// CooldownSeconds is the minimum age of a ticket before it can be claimed.
	CooldownSeconds int64  = 86400
	MaxFeeBps       uint16 = 10000

	maxCommitAttempts = 5
)

var (
	seedVaultState  = []byte("vault_state")
	seedVaultToken  = []byte("vault_token")
	seedWithdrawal  = []byte("withdrawal")
	seedReceiptMint = []byte("receipt_mint")
)

// Call carries what the dispatcher established about the caller.
type Call struct {
	Signers []common.Address
	// Guard, if set, runs first inside the operation's batch. A failing guard
	// aborts the operation.
	Guard func(b *storage.Batch) error
}

type Processor struct {
	storage     *storage.Storage
	ledger      *token.Ledger
	resolver    *pda.Resolver
	clock       clock.Clock
	program     common.Address
	authorities AuthorityResolver
	locks       *utils.KeyedMutex
	log         *log.Logger
}

func NewProcessor(
	s *storage.Storage,
	ledger *token.Ledger,
	resolver *pda.Resolver,
	clk clock.Clock,
	program common.Address,
) *Processor {
	return &Processor{
		storage:     s,
		ledger:      ledger,
		resolver:    resolver,
		clock:       clk,
		program:     program,
		authorities: SingleKeyAuthorities,
		locks:       utils.NewKeyedMutex(),
		log:         log.NewLogger("vault"),
	}
}

// SetAuthorityResolver replaces how admin identities are authorized.
func (p *Processor) SetAuthorityResolver(r AuthorityResolver) {
	p.authorities = r
}

func (p *Processor) Program() common.Address {
	return p.program
}

func (p *Processor) Ledger() *token.Ledger {
	return p.ledger
}

func (p *Processor) Storage() *storage.Storage {
	return p.storage
}

// VaultAddress derives the vault state address of admin and its bump.
func (p *Processor) VaultAddress(admin common.Address) (common.Address, uint8, error) {
	return p.resolver.Find(p.program, seedVaultState, admin.Bytes())
}

// HeldBalanceAddress derives the account holding the vault's deposits.
func (p *Processor) HeldBalanceAddress(vault common.Address) (common.Address, uint8, error) {
	return p.resolver.Find(p.program, seedVaultToken, vault.Bytes())
}

// TicketAddress derives the withdrawal ticket address of user in vault.
func (p *Processor) TicketAddress(user common.Address, vault common.Address) (common.Address, uint8, error) {
	return p.resolver.Find(p.program, seedWithdrawal, user.Bytes(), vault.Bytes())
}

// ReceiptMintAddress derives the receipt asset of vault.
func (p *Processor) ReceiptMintAddress(vault common.Address) (common.Address, uint8, error) {
	return p.resolver.Find(p.program, seedReceiptMint, vault.Bytes())
}

// vaultSigner is the derived authority of the vault: mint authority of the
// receipt asset and owner of the held balance. The canonical bump must be the
// one recorded at initialization.
func (p *Processor) vaultSigner(vault common.Address, state *types.VaultState) (pda.Signer, error) {
	signer, addr, err := p.resolver.Signer(p.program, seedVaultState, state.Admin.Bytes())
	if err != nil {
		return pda.Signer{}, err
	}
	if addr != vault || signer.Bump != state.Bump {
		return pda.Signer{}, fmt.Errorf("%w: vault %s bump %d, recorded %d", ErrAccountMismatch, vault.Hex(), signer.Bump, state.Bump)
	}
	return signer, nil
}

// heldBalance derives the held-balance account from the bump recorded in
// state and checks it against the canonical derivation.
func (p *Processor) heldBalance(vault common.Address, state *types.VaultState) (common.Address, error) {
	addr, err := pda.CreateAddress(p.program, seedVaultToken, vault.Bytes(), []byte{state.VaultTokenBump})
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: held balance bump %d: %v", ErrAccountMismatch, state.VaultTokenBump, err)
	}
	canonical, _, err := p.HeldBalanceAddress(vault)
	if err != nil {
		return common.Address{}, err
	}
	if addr != canonical {
		return common.Address{}, fmt.Errorf("%w: held balance bump %d is not canonical", ErrAccountMismatch, state.VaultTokenBump)
	}
	return addr, nil
}

func (p *Processor) loadVault(b *storage.Batch, vault common.Address) (*types.VaultState, error) {
	data, err := b.Load(vault, p.program)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, vault.Hex())
		}
		return nil, err
	}
	return p.storage.Serializer().DeserializeVaultState(data)
}

func (p *Processor) storeVault(b *storage.Batch, vault common.Address, state *types.VaultState) error {
	data, err := state.Serialize(p.storage.Serializer())
	if err != nil {
		return err
	}
	return b.Store(vault, p.program, data)
}

func (p *Processor) loadTicket(b *storage.Batch, ticket common.Address) (*types.WithdrawalTicket, error) {
	data, err := b.Load(ticket, p.program)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoPendingWithdrawal, ticket.Hex())
		}
		return nil, err
	}
	return p.storage.Serializer().DeserializeWithdrawalTicket(data)
}

// holding loads a token holding and checks its owner and asset.
func (p *Processor) holding(b *storage.Batch, addr common.Address, owner common.Address, mint common.Address) (*types.TokenAccount, error) {
	acct, err := p.ledger.Account(b, addr)
	if err != nil {
		return nil, fmt.Errorf("holding %s: %w", addr.Hex(), err)
	}
	if acct.Owner != owner {
		return nil, fmt.Errorf("%w: holding %s owned by %s, not %s", ErrUnauthorized, addr.Hex(), acct.Owner.Hex(), owner.Hex())
	}
	if acct.Mint != mint {
		return nil, fmt.Errorf("%w: holding %s is %s, want %s", ErrAccountMismatch, addr.Hex(), acct.Mint.Hex(), mint.Hex())
	}
	return acct, nil
}

func (p *Processor) holdingOrDefault(addr common.Address, owner common.Address, mint common.Address) (common.Address, error) {
	if addr != (common.Address{}) {
		return addr, nil
	}
	return p.ledger.AssociatedAddress(owner, mint)
}

// execute runs op for vault under the vault's lock. The batch is retried from
// scratch when its commit conflicts with a concurrent batch touching shared
// accounts.
func (p *Processor) execute(vault common.Address, call Call, op func(b *storage.Batch) ([]*types.Event, error)) ([]*types.Event, error) {
	p.locks.Lock(vault)
	defer p.locks.Unlock(vault)

	for attempt := 1; ; attempt++ {
		b := p.storage.Begin()
		events, err := p.apply(b, call, op)
		if err != nil {
			b.Discard()
			return nil, err
		}
		err = b.Commit()
		if errors.Is(err, storage.ErrConflict) && attempt < maxCommitAttempts {
			p.log.Debug().Str("vault", vault.Hex()).Int("attempt", attempt).Msg("commit conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return events, nil
	}
}

func (p *Processor) apply(b *storage.Batch, call Call, op func(b *storage.Batch) ([]*types.Event, error)) ([]*types.Event, error) {
	if call.Guard != nil {
		if err := call.Guard(b); err != nil {
			return nil, err
		}
	}
	events, err := op(b)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := b.AppendEvent(e); err != nil {
			return nil, err
		}
	}
	return events, nil
}
