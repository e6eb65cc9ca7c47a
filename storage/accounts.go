package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

func (b *Batch) Exists(addr common.Address) (bool, error) {
	_, exist, err := b.get(db.NamespaceAccount, addr.Bytes())
	return exist, err
}

func (b *Batch) loadRaw(addr common.Address) (*types.AccountHeader, []byte, error) {
	raw, exist, err := b.get(db.NamespaceAccount, addr.Bytes())
	if err != nil {
		return nil, nil, err
	}
	if !exist {
		return nil, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr.Hex())
	}
	if len(raw) < types.AccountHeaderSize {
		return nil, nil, fmt.Errorf("account %s: %w", addr.Hex(), types.ErrInvalidLength)
	}
	header, err := b.storage.serializer.DeserializeAccountHeader(raw[:types.AccountHeaderSize])
	if err != nil {
		return nil, nil, fmt.Errorf("account %s: %w", addr.Hex(), err)
	}
	return header, raw[types.AccountHeaderSize:], nil
}

func (b *Batch) storeRaw(addr common.Address, header *types.AccountHeader, data []byte) error {
	headerBytes, err := header.Serialize(b.storage.serializer)
	if err != nil {
		return err
	}
	raw := make([]byte, 0, len(headerBytes)+len(data))
	raw = append(raw, headerBytes...)
	raw = append(raw, data...)
	b.set(db.NamespaceAccount, addr.Bytes(), raw)
	return nil
}

// Create allocates size zeroed bytes at addr for owner. payer funds the rent
// deposit from its native balance.
func (b *Batch) Create(addr common.Address, owner common.Address, payer common.Address, size uint64) error {
	exist, err := b.Exists(addr)
	if err != nil {
		return err
	}
	if exist {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr.Hex())
	}
	rent, err := b.storage.RentExempt(size)
	if err != nil {
		return err
	}
	if err := b.Debit(payer, rent); err != nil {
		return fmt.Errorf("rent for %s: %w", addr.Hex(), err)
	}
	header := &types.AccountHeader{Owner: owner, Payer: payer, Rent: rent, Size: size}
	return b.storeRaw(addr, header, make([]byte, size))
}

// Load returns the data of an account owned by owner.
func (b *Batch) Load(addr common.Address, owner common.Address) ([]byte, error) {
	header, data, err := b.loadRaw(addr)
	if err != nil {
		return nil, err
	}
	if header.Owner != owner {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, addr.Hex(), header.Owner.Hex())
	}
	return data, nil
}

// Store replaces the data of an existing account owned by owner.
func (b *Batch) Store(addr common.Address, owner common.Address, data []byte) error {
	header, _, err := b.loadRaw(addr)
	if err != nil {
		return err
	}
	if header.Owner != owner {
		return fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, addr.Hex(), header.Owner.Hex())
	}
	if uint64(len(data)) != header.Size {
		return fmt.Errorf("%w: %s has %d, got %d", ErrSizeMismatch, addr.Hex(), header.Size, len(data))
	}
	return b.storeRaw(addr, header, data)
}

// Close removes an account owned by owner and credits its rent deposit to
// refundTo.
func (b *Batch) Close(addr common.Address, owner common.Address, refundTo common.Address) error {
	header, _, err := b.loadRaw(addr)
	if err != nil {
		return err
	}
	if header.Owner != owner {
		return fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, addr.Hex(), header.Owner.Hex())
	}
	if err := b.Fund(refundTo, header.Rent); err != nil {
		return err
	}
	b.del(db.NamespaceAccount, addr.Bytes())
	return nil
}

func (b *Batch) NativeBalance(addr common.Address) (uint64, error) {
	return b.getUint64(db.NamespaceNative, addr.Bytes())
}

// Fund credits amount to the native balance of addr.
func (b *Batch) Fund(addr common.Address, amount uint64) error {
	balance, err := b.NativeBalance(addr)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("%w: %s", ErrNativeOverflow, addr.Hex())
	}
	b.setUint64(db.NamespaceNative, addr.Bytes(), balance+amount)
	return nil
}

// Debit takes amount from the native balance of addr.
func (b *Batch) Debit(addr common.Address, amount uint64) error {
	balance, err := b.NativeBalance(addr)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientNative, addr.Hex(), balance, amount)
	}
	b.setUint64(db.NamespaceNative, addr.Bytes(), balance-amount)
	return nil
}

// Nonce is the last nonce consumed by addr, zero if none.
func (b *Batch) Nonce(addr common.Address) (uint64, error) {
	return b.getUint64(db.NamespaceNonce, addr.Bytes())
}

func (b *Batch) SetNonce(addr common.Address, nonce uint64) {
	b.setUint64(db.NamespaceNonce, addr.Bytes(), nonce)
}

func (b *Batch) getUint64(namespace []byte, key []byte) (uint64, error) {
	val, exist, err := b.get(namespace, key)
	if err != nil || !exist {
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("%s|%x: %w", namespace, key, types.ErrInvalidLength)
	}
	return binary.BigEndian.Uint64(val), nil
}

func (b *Batch) setUint64(namespace []byte, key []byte, v uint64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	b.set(namespace, key, buf)
}
