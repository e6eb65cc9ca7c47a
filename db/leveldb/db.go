// Package leveldb is a goleveldb backed implementation of db.DB.
package leveldb

import (
	"errors"
	"time"

	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var logger = log.NewLogger("db")

var errDiscarded = errors.New("Commit after discard is not allowed")

// Enforce database and transaction implements interfaces
var _ vaultdb.DB = (*DB)(nil)

type DB struct {
	db   *leveldb.DB
	name string
}

// NewDB creates new database or load existing database in the directory
func NewDB(dir string) (*DB, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		BlockCacheCapacity: 8 * opt.MiB,
		WriteBuffer:        4 * opt.MiB,
	})
	if err != nil {
		return nil, err
	}
	return &DB{db: db, name: dir}, nil
}

func (db *DB) Type() string {
	return "leveldb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	return db.db.Put(key, vaultdb.ConvNilToBytes(value), nil)
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	return db.db.Delete(key, nil)
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	value, err := db.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (db *DB) Exist(namespace []byte, key []byte) (bool, error) {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	return db.db.Has(key, nil)
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) NewTx() vaultdb.Transaction {
	return &Transaction{db: db, batch: new(leveldb.Batch), createT: time.Now()}
}

func (db *DB) NewBulk() vaultdb.Bulk {
	return &Bulk{Transaction{db: db, batch: new(leveldb.Batch), createT: time.Now()}}
}

// Transaction collects writes in a leveldb.Batch, which is applied atomically.
type Transaction struct {
	db        *DB
	batch     *leveldb.Batch
	createT   time.Time
	discarded bool
}

func (tx *Transaction) Set(namespace []byte, key []byte, value []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	tx.batch.Put(key, vaultdb.ConvNilToBytes(value))
	return nil
}

func (tx *Transaction) Delete(namespace []byte, key []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	tx.batch.Delete(key)
	return nil
}

func (tx *Transaction) Commit() error {
	if tx.discarded {
		return errDiscarded
	}
	writeStartT := time.Now()
	err := tx.db.db.Write(tx.batch, &opt.WriteOptions{Sync: true})
	if took := time.Since(writeStartT); took > time.Millisecond*100 {
		logger.Warn().Str("name", tx.db.name).Str("callstack", log.SkipCaller(2)).
			Int("ops", tx.batch.Len()).Dur("takenTime", took).Msg("commit takes long time")
	}
	tx.batch.Reset()
	return err
}

func (tx *Transaction) Discard() {
	tx.discarded = true
	tx.batch.Reset()
}

type Bulk struct {
	Transaction
}

func (bulk *Bulk) Flush() error {
	return bulk.Commit()
}

func (bulk *Bulk) DiscardLast() {
	bulk.Discard()
}

// Iterator adapts a goleveldb iterator to db.Iterator.
type Iterator struct {
	end     []byte
	reverse bool
	iter    interface {
		Valid() bool
		Next() bool
		Prev() bool
		Key() []byte
		Value() []byte
		Release()
	}
	released bool
}

func (db *DB) Iterator(start []byte, end []byte) vaultdb.Iterator {
	if end != nil && string(start) > string(end) {
		// reverse walk over (end, start]
		iter := db.db.NewIterator(&util.Range{Start: end, Limit: nil}, nil)
		if !iter.Seek(start) {
			iter.Last()
		} else if string(iter.Key()) != string(start) {
			iter.Prev()
		}
		return &Iterator{end: end, reverse: true, iter: iter}
	}
	iter := db.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	iter.First()
	return &Iterator{end: end, iter: iter}
}

func (iter *Iterator) Valid() bool {
	if iter.released || !iter.iter.Valid() {
		return false
	}
	if iter.reverse {
		return string(iter.iter.Key()) > string(iter.end)
	}
	return true
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return errors.New("Invalid iterator")
	}
	if iter.reverse {
		iter.iter.Prev()
	} else {
		iter.iter.Next()
	}
	return nil
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	return append([]byte{}, iter.iter.Key()...), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	return append([]byte{}, iter.iter.Value()...), nil
}

func (iter *Iterator) Release() {
	if !iter.released {
		iter.iter.Release()
		iter.released = true
	}
}
