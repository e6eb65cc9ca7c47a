package memorydb

import (
	"container/list"
	"errors"
	"sync"

	vaultdb "github.com/celer-network/go-vault/db"
)

var (
	errCommitAfterDiscard = errors.New("Commit after discard is not allowed")
	errDoubleCommit       = errors.New("Commit occurs two times")
)

type txOp struct {
	isSet bool
	key   []byte
	value []byte
}

// batch buffers operations and applies them to the map under the db lock in
// one step. Transaction and Bulk share it.
type batch struct {
	lock      sync.Mutex
	db        *DB
	opList    *list.List
	isDiscard bool
	isCommit  bool
}

func newBatch(db *DB) batch {
	return batch{db: db, opList: list.New()}
}

func (b *batch) set(namespace []byte, key []byte, value []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	b.opList.PushBack(&txOp{true, key, copyBytes(vaultdb.ConvNilToBytes(value))})
	return nil
}

func (b *batch) delete(namespace []byte, key []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	b.opList.PushBack(&txOp{false, key, nil})
	return nil
}

func (b *batch) apply() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.isDiscard {
		return errCommitAfterDiscard
	} else if b.isCommit {
		return errDoubleCommit
	}

	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for e := b.opList.Front(); e != nil; e = e.Next() {
		op := e.Value.(*txOp)
		if op.isSet {
			b.db.db[string(op.key)] = op.value
		} else {
			delete(b.db.db, string(op.key))
		}
	}

	b.isCommit = true
	return nil
}

func (b *batch) discard() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.isDiscard = true
}

type Transaction struct {
	batch
}

func (tx *Transaction) Set(namespace []byte, key []byte, value []byte) error {
	return tx.set(namespace, key, value)
}

func (tx *Transaction) Delete(namespace []byte, key []byte) error {
	return tx.delete(namespace, key)
}

func (tx *Transaction) Commit() error {
	return tx.apply()
}

func (tx *Transaction) Discard() {
	tx.discard()
}

type Bulk struct {
	batch
}

func (bulk *Bulk) Set(namespace []byte, key []byte, value []byte) error {
	return bulk.set(namespace, key, value)
}

func (bulk *Bulk) Delete(namespace []byte, key []byte) error {
	return bulk.delete(namespace, key)
}

func (bulk *Bulk) Flush() error {
	return bulk.apply()
}

func (bulk *Bulk) DiscardLast() {
	bulk.discard()
}
