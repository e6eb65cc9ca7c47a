// Package token is the asset ledger: mints, holdings, and the transfer,
// mint and burn primitives. Each primitive either applies fully or leaves the
// batch untouched.
package token

import (
	"errors"
	"fmt"

	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMintMismatch      = errors.New("account mint mismatch")
	ErrUnauthorized      = errors.New("authority did not sign")
	ErrOverflow          = errors.New("amount overflow")
	ErrUninitializedMint = errors.New("mint not initialized")
)

var seedAssociated = []byte("associated")

// Authority proves the right to move funds out of, or mint for, an address.
type Authority interface {
	Authorizes(addr common.Address) error
}

// Signers is the set of identities that signed the current call.
type Signers []common.Address

func (s Signers) Authorizes(addr common.Address) error {
	for _, signer := range s {
		if signer == addr {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, addr.Hex())
}

func authorize(auth Authority, addr common.Address) error {
	if auth == nil {
		return fmt.Errorf("%w: %s", ErrUnauthorized, addr.Hex())
	}
	if err := auth.Authorizes(addr); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}

type Ledger struct {
	program    common.Address
	resolver   *pda.Resolver
	serializer *types.Serializer
}

func NewLedger(program common.Address, resolver *pda.Resolver, serializer *types.Serializer) *Ledger {
	return &Ledger{
		program:    program,
		resolver:   resolver,
		serializer: serializer,
	}
}

// Program is the identity owning every mint and holding.
func (l *Ledger) Program() common.Address {
	return l.program
}

func (l *Ledger) CreateMint(b *storage.Batch, mint common.Address, mintAuthority common.Address, payer common.Address, decimals uint8) error {
	snap := b.Snapshot()
	if err := b.Create(mint, l.program, payer, types.MintSize); err != nil {
		return err
	}
	m := &types.Mint{MintAuthority: mintAuthority, Decimals: decimals, IsInitialized: true}
	if err := l.storeMint(b, mint, m); err != nil {
		b.Revert(snap)
		return err
	}
	return nil
}

func (l *Ledger) CreateAccount(b *storage.Batch, addr common.Address, mint common.Address, owner common.Address, payer common.Address) error {
	if _, err := l.Mint(b, mint); err != nil {
		return err
	}
	snap := b.Snapshot()
	if err := b.Create(addr, l.program, payer, types.TokenAccountSize); err != nil {
		b.Revert(snap)
		return err
	}
	if err := l.storeAccount(b, addr, &types.TokenAccount{Mint: mint, Owner: owner}); err != nil {
		b.Revert(snap)
		return err
	}
	return nil
}

// AssociatedAddress is the canonical holding of owner for mint.
func (l *Ledger) AssociatedAddress(owner common.Address, mint common.Address) (common.Address, error) {
	addr, _, err := l.resolver.Find(l.program, seedAssociated, owner.Bytes(), mint.Bytes())
	return addr, err
}

// CreateAssociatedAccount creates the canonical holding of owner for mint if
// it does not exist yet, and returns its address.
func (l *Ledger) CreateAssociatedAccount(b *storage.Batch, owner common.Address, mint common.Address, payer common.Address) (common.Address, error) {
	addr, err := l.AssociatedAddress(owner, mint)
	if err != nil {
		return common.Address{}, err
	}
	exists, err := b.Exists(addr)
	if err != nil {
		return common.Address{}, err
	}
	if exists {
		return addr, nil
	}
	return addr, l.CreateAccount(b, addr, mint, owner, payer)
}

func (l *Ledger) Mint(b *storage.Batch, mint common.Address) (*types.Mint, error) {
	data, err := b.Load(mint, l.program)
	if err != nil {
		return nil, err
	}
	m, err := l.serializer.DeserializeMint(data)
	if err != nil {
		return nil, err
	}
	if !m.IsInitialized {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedMint, mint.Hex())
	}
	return m, nil
}

func (l *Ledger) Account(b *storage.Batch, addr common.Address) (*types.TokenAccount, error) {
	data, err := b.Load(addr, l.program)
	if err != nil {
		return nil, err
	}
	return l.serializer.DeserializeTokenAccount(data)
}

// Transfer moves amount between two holdings of the same mint. auth must
// speak for the owner of from.
func (l *Ledger) Transfer(b *storage.Batch, from common.Address, to common.Address, amount uint64, auth Authority) error {
	src, err := l.Account(b, from)
	if err != nil {
		return err
	}
	dst, err := l.Account(b, to)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %s is %s, %s is %s", ErrMintMismatch, from.Hex(), src.Mint.Hex(), to.Hex(), dst.Mint.Hex())
	}
	if err := authorize(auth, src.Owner); err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from.Hex(), src.Amount, amount)
	}
	if from == to {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return fmt.Errorf("%w: %s", ErrOverflow, to.Hex())
	}
	src.Amount -= amount
	dst.Amount += amount

	snap := b.Snapshot()
	if err := l.storeAccount(b, from, src); err != nil {
		return err
	}
	if err := l.storeAccount(b, to, dst); err != nil {
		b.Revert(snap)
		return err
	}
	return nil
}

// MintTo creates amount new units of mint in holding to. auth must speak for
// the mint authority.
func (l *Ledger) MintTo(b *storage.Batch, mint common.Address, to common.Address, amount uint64, auth Authority) error {
	m, err := l.Mint(b, mint)
	if err != nil {
		return err
	}
	dst, err := l.Account(b, to)
	if err != nil {
		return err
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: %s is %s, want %s", ErrMintMismatch, to.Hex(), dst.Mint.Hex(), mint.Hex())
	}
	if err := authorize(auth, m.MintAuthority); err != nil {
		return err
	}
	if m.Supply+amount < m.Supply || dst.Amount+amount < dst.Amount {
		return fmt.Errorf("%w: minting %d of %s", ErrOverflow, amount, mint.Hex())
	}
	m.Supply += amount
	dst.Amount += amount

	snap := b.Snapshot()
	if err := l.storeMint(b, mint, m); err != nil {
		return err
	}
	if err := l.storeAccount(b, to, dst); err != nil {
		b.Revert(snap)
		return err
	}
	return nil
}

// Burn destroys amount units held by from. auth must speak for the owner of
// from.
func (l *Ledger) Burn(b *storage.Batch, mint common.Address, from common.Address, amount uint64, auth Authority) error {
	m, err := l.Mint(b, mint)
	if err != nil {
		return err
	}
	src, err := l.Account(b, from)
	if err != nil {
		return err
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: %s is %s, want %s", ErrMintMismatch, from.Hex(), src.Mint.Hex(), mint.Hex())
	}
	if err := authorize(auth, src.Owner); err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s has %d, burning %d", ErrInsufficientFunds, from.Hex(), src.Amount, amount)
	}
	if m.Supply < amount {
		return fmt.Errorf("%w: supply of %s below %d", ErrOverflow, mint.Hex(), amount)
	}
	m.Supply -= amount
	src.Amount -= amount

	snap := b.Snapshot()
	if err := l.storeMint(b, mint, m); err != nil {
		return err
	}
	if err := l.storeAccount(b, from, src); err != nil {
		b.Revert(snap)
		return err
	}
	return nil
}

func (l *Ledger) storeMint(b *storage.Batch, addr common.Address, m *types.Mint) error {
	data, err := m.Serialize(l.serializer)
	if err != nil {
		return err
	}
	return b.Store(addr, l.program, data)
}

func (l *Ledger) storeAccount(b *storage.Batch, addr common.Address, a *types.TokenAccount) error {
	data, err := a.Serialize(l.serializer)
	if err != nil {
		return err
	}
	return b.Store(addr, l.program, data)
}
