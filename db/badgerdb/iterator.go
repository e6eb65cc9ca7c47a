package badgerdb

import (
	"bytes"
	"errors"

	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/dgraph-io/badger/v2"
)

type Iterator struct {
	end     []byte
	reverse bool
	txn     *badger.Txn
	iter    *badger.Iterator
}

func (db *DB) Iterator(start, end []byte) vaultdb.Iterator {
	txn := db.db.NewTransaction(false)

	// if start is bigger than end, then reverse order
	reverse := end != nil && bytes.Compare(start, end) == 1

	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	opt.Reverse = reverse

	badgerIter := txn.NewIterator(opt)
	badgerIter.Seek(start)

	return &Iterator{
		end:     end,
		reverse: reverse,
		txn:     txn,
		iter:    badgerIter,
	}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return errors.New("Invalid iterator")
	}
	iter.iter.Next()
	return nil
}

func (iter *Iterator) Valid() bool {
	if iter.iter == nil || !iter.iter.Valid() {
		return false
	}
	if iter.end == nil {
		return true
	}
	key := iter.iter.Item().Key()
	if iter.reverse {
		return bytes.Compare(key, iter.end) > 0
	}
	return bytes.Compare(iter.end, key) > 0
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	return iter.iter.Item().KeyCopy(nil), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, errors.New("Invalid iterator")
	}
	return iter.iter.Item().ValueCopy(nil)
}

func (iter *Iterator) Release() {
	if iter.iter == nil {
		return
	}
	iter.iter.Close()
	iter.txn.Discard()
	iter.iter = nil
}
