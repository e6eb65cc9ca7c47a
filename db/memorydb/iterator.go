package memorydb

import (
	"bytes"
	"errors"
	"sort"

	vaultdb "github.com/celer-network/go-vault/db"
)

var errInvalidIterator = errors.New("iterator is not valid")

// Iterator walks a snapshot of the key set taken when it was created. Values
// are read from the live map.
type Iterator struct {
	db       *DB
	keys     []string
	pos      int
	released bool
}

// inRange reports whether key lies in [lo, hi). A nil hi is unbounded.
func inRange(key, lo, hi []byte) bool {
	return bytes.Compare(key, lo) >= 0 && (hi == nil || bytes.Compare(key, hi) < 0)
}

func (db *DB) Iterator(start []byte, end []byte) vaultdb.Iterator {
	db.lock.Lock()
	defer db.lock.Unlock()

	// start > end walks (end, start] backwards
	reverse := end != nil && bytes.Compare(start, end) > 0

	keys := make([]string, 0)
	for key := range db.db {
		k := []byte(key)
		if reverse {
			if bytes.Compare(k, end) > 0 && (start == nil || bytes.Compare(k, start) <= 0) {
				keys = append(keys, key)
			}
		} else if inRange(k, start, end) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if reverse {
			return keys[i] > keys[j]
		}
		return keys[i] < keys[j]
	})
	return &Iterator{db: db, keys: keys}
}

func (it *Iterator) Next() error {
	if !it.Valid() {
		return errInvalidIterator
	}
	it.pos++
	return nil
}

func (it *Iterator) Valid() bool {
	return !it.released && it.pos < len(it.keys)
}

func (it *Iterator) Key() ([]byte, error) {
	if !it.Valid() {
		return nil, errInvalidIterator
	}
	return []byte(it.keys[it.pos]), nil
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.Valid() {
		return nil, errInvalidIterator
	}
	value, _, err := it.db.Get(nil, []byte(it.keys[it.pos]))
	return value, err
}

func (it *Iterator) Release() {
	it.released = true
}
