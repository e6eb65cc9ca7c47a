package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/types"
	"github.com/ethereum/go-ethereum/common"
)

func eventKey(vault common.Address, seq uint64) []byte {
	key := make([]byte, common.AddressLength+8)
	copy(key, vault.Bytes())
	binary.BigEndian.PutUint64(key[common.AddressLength:], seq)
	return key
}

// AppendEvent assigns the next sequence number of e.Vault to e and stores it.
// Sequence numbers start at 1.
func (b *Batch) AppendEvent(e *types.Event) error {
	last, err := b.getUint64(db.NamespaceEventSeq, e.Vault.Bytes())
	if err != nil {
		return err
	}
	e.Seq = last + 1
	data, err := e.Serialize(b.storage.serializer)
	if err != nil {
		return err
	}
	b.setUint64(db.NamespaceEventSeq, e.Vault.Bytes(), e.Seq)
	b.set(db.NamespaceEvent, eventKey(e.Vault, e.Seq), data)
	return nil
}

// Events returns committed events of vault with a sequence number of at
// least fromSeq, oldest first. limit <= 0 means no limit.
func (s *Storage) Events(vault common.Address, fromSeq uint64, limit int) ([]*types.Event, error) {
	start := db.PrependNamespace(db.NamespaceEvent, eventKey(vault, fromSeq))
	_, end := db.PrefixRange(db.NamespaceEvent, vault.Bytes())

	it := s.db.Iterator(start, end)
	defer it.Release()

	var events []*types.Event
	for ; it.Valid(); it.Next() {
		val, err := it.Value()
		if err != nil {
			return nil, err
		}
		e, err := s.serializer.DeserializeEvent(val)
		if err != nil {
			return nil, fmt.Errorf("event of %s: %w", vault.Hex(), err)
		}
		events = append(events, e)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// PruneEvents deletes committed events of vault with a sequence number below
// beforeSeq and returns how many were removed. The sequence counter is kept,
// so later events continue numbering where the log left off.
func (s *Storage) PruneEvents(vault common.Address, beforeSeq uint64) (int, error) {
	if beforeSeq <= 1 {
		return 0, nil
	}
	start, _ := db.PrefixRange(db.NamespaceEvent, vault.Bytes())
	end := db.PrependNamespace(db.NamespaceEvent, eventKey(vault, beforeSeq))

	it := s.db.Iterator(start, end)
	var keys [][]byte
	for ; it.Valid(); it.Next() {
		raw, err := it.Key()
		if err != nil {
			it.Release()
			return 0, err
		}
		keys = append(keys, copyBytes(raw[len(start)-common.AddressLength:]))
	}
	it.Release()
	if len(keys) == 0 {
		return 0, nil
	}

	bulk := s.db.NewBulk()
	for _, key := range keys {
		if err := bulk.Delete(db.NamespaceEvent, key); err != nil {
			bulk.DiscardLast()
			return 0, err
		}
	}
	if err := bulk.Flush(); err != nil {
		return 0, err
	}
	logger.Debug().Str("vault", vault.Hex()).Int("pruned", len(keys)).Uint64("beforeSeq", beforeSeq).Msg("events pruned")
	return len(keys), nil
}
