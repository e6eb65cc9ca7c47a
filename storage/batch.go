package storage

import (
	"bytes"
	"errors"
	"sort"
	"time"

	"github.com/celer-network/go-vault/db"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

type ovVal struct {
	namespace []byte
	key       []byte
	val       []byte
	exist     bool
}

type change struct {
	key     string
	prev    ovVal
	hasPrev bool
}

type readVal struct {
	namespace []byte
	key       []byte
	val       []byte
	exist     bool
}

// Batch is a write overlay over committed state. Reads see the batch's own
// writes first. Nothing reaches the database until Commit, which fails with
// ErrConflict if anything the batch read from the database has changed since.
// A Batch is not safe for concurrent use.
type Batch struct {
	storage   *Storage
	overlay   map[string]ovVal
	changelog []change
	reads     map[string]readVal
	closed    bool
}

func newBatch(s *Storage) *Batch {
	return &Batch{
		storage: s,
		overlay: make(map[string]ovVal, 16),
		reads:   make(map[string]readVal, 16),
	}
}

func overlayKey(namespace []byte, key []byte) string {
	return string(db.PrependNamespace(namespace, key))
}

func (b *Batch) get(namespace []byte, key []byte) ([]byte, bool, error) {
	if b.closed {
		return nil, false, ErrBatchClosed
	}
	k := overlayKey(namespace, key)
	if v, ok := b.overlay[k]; ok {
		if !v.exist {
			return nil, false, nil
		}
		return copyBytes(v.val), true, nil
	}
	if r, ok := b.reads[k]; ok {
		return copyBytes(r.val), r.exist, nil
	}
	val, exist, err := b.storage.db.Get(namespace, key)
	if err != nil {
		return nil, false, err
	}
	b.reads[k] = readVal{namespace: namespace, key: copyBytes(key), val: copyBytes(val), exist: exist}
	return val, exist, nil
}

func (b *Batch) set(namespace []byte, key []byte, val []byte) {
	b.record(namespace, key, ovVal{namespace: namespace, key: copyBytes(key), val: copyBytes(val), exist: true})
}

func (b *Batch) del(namespace []byte, key []byte) {
	b.record(namespace, key, ovVal{namespace: namespace, key: copyBytes(key)})
}

func (b *Batch) record(namespace []byte, key []byte, v ovVal) {
	k := overlayKey(namespace, key)
	prev, has := b.overlay[k]
	b.changelog = append(b.changelog, change{key: k, prev: prev, hasPrev: has})
	b.overlay[k] = v
}

// Snapshot returns a marker Revert can roll back to.
func (b *Batch) Snapshot() int {
	return len(b.changelog)
}

func (b *Batch) Revert(snap int) error {
	if snap < 0 || snap > len(b.changelog) {
		return ErrInvalidSnapshot
	}
	for i := len(b.changelog) - 1; i >= snap; i-- {
		c := b.changelog[i]
		if c.hasPrev {
			b.overlay[c.key] = c.prev
		} else {
			delete(b.overlay, c.key)
		}
	}
	b.changelog = b.changelog[:snap]
	return nil
}

// Pending is the number of keys the batch would write.
func (b *Batch) Pending() int {
	return len(b.overlay)
}

// Commit validates the read set and writes the overlay in one database
// transaction. The batch is closed afterwards whether or not it succeeded.
func (b *Batch) Commit() error {
	if b.closed {
		return ErrBatchClosed
	}
	b.closed = true
	if b.Pending() == 0 {
		return nil
	}

	s := b.storage
	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	for _, r := range b.reads {
		val, exist, err := s.db.Get(r.namespace, r.key)
		if err != nil {
			return err
		}
		if exist != r.exist || !bytes.Equal(val, r.val) {
			return ErrConflict
		}
	}

	keys := make([]string, 0, len(b.overlay))
	for k := range b.overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := time.Now()
	tx := s.db.NewTx()
	for _, k := range keys {
		v := b.overlay[k]
		var err error
		if v.exist {
			err = tx.Set(v.namespace, v.key, v.val)
		} else {
			err = tx.Delete(v.namespace, v.key)
		}
		if err != nil {
			tx.Discard()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug().Int("keys", len(keys)).Int("reads", len(b.reads)).Dur("took", time.Since(start)).Msg("batch committed")
	return nil
}

// Discard drops every pending write.
func (b *Batch) Discard() {
	b.closed = true
	b.overlay = nil
	b.changelog = nil
	b.reads = nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
