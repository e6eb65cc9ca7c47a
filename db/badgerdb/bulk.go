package badgerdb

import (
	"time"

	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/log"
	"github.com/dgraph-io/badger/v2"
)

// Bulk wraps a badger WriteBatch, which commits internally whenever a
// badger transaction would grow too large.
type Bulk struct {
	db      *DB
	wb      *badger.WriteBatch
	createT time.Time
	sets    uint
	deletes uint
	bytes   uint64
}

func (bulk *Bulk) Set(namespace []byte, key []byte, value []byte) error {
	k := vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	v := vaultdb.ConvNilToBytes(value)
	if err := bulk.wb.Set(k, v); err != nil {
		return err
	}
	bulk.sets++
	bulk.bytes += uint64(len(k) + len(v))
	return nil
}

func (bulk *Bulk) Delete(namespace []byte, key []byte) error {
	k := vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	if err := bulk.wb.Delete(k); err != nil {
		return err
	}
	bulk.deletes++
	bulk.bytes += uint64(len(k))
	return nil
}

func (bulk *Bulk) Flush() error {
	start := time.Now()
	err := bulk.wb.Flush()
	if took := time.Since(start); took > 100*time.Millisecond {
		logger.Warn().Str("name", bulk.db.name).Str("caller", log.SkipCaller(2)).
			Uint("sets", bulk.sets).Uint("deletes", bulk.deletes).Uint64("bytes", bulk.bytes).
			Dur("buffered", start.Sub(bulk.createT)).Dur("flush", took).Msg("slow bulk flush")
	}
	return err
}

func (bulk *Bulk) DiscardLast() {
	bulk.wb.Cancel()
}
