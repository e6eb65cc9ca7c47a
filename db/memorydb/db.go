package memorydb

import (
	"sync"

	vaultdb "github.com/celer-network/go-vault/db"
)

func NewDB() *DB {
	return &DB{
		db: make(map[string][]byte),
	}
}

// Enforce database and transaction implements interfaces
var _ vaultdb.DB = (*DB)(nil)

type DB struct {
	lock sync.Mutex
	db   map[string][]byte
}

func (db *DB) Type() string {
	return "memorydb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	db.db[string(key)] = copyBytes(vaultdb.ConvNilToBytes(value))
	return nil
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	delete(db.db, string(key))
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	value, exists := db.db[string(key)]
	if !exists {
		return nil, false, nil
	}
	return copyBytes(value), true, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) NewTx() vaultdb.Transaction {
	return &Transaction{batch: newBatch(db)}
}

func (db *DB) NewBulk() vaultdb.Bulk {
	return &Bulk{batch: newBatch(db)}
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
