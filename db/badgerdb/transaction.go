package badgerdb

import (
	"time"

	vaultdb "github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/log"
	"github.com/dgraph-io/badger/v2"
)

type Transaction struct {
	db        *DB
	tx        *badger.Txn
	createT   time.Time
	setCount  uint
	delCount  uint
	keySize   uint64
	valueSize uint64
}

func (transaction *Transaction) Set(namespace []byte, key []byte, value []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))
	value = vaultdb.ConvNilToBytes(value)

	// ErrTxnTooBig is surfaced as is; a vault operation writes a handful of keys
	if err := transaction.tx.Set(key, value); err != nil {
		return err
	}

	transaction.setCount++
	transaction.keySize += uint64(len(key))
	transaction.valueSize += uint64(len(value))
	return nil
}

func (transaction *Transaction) Delete(namespace []byte, key []byte) error {
	key = vaultdb.ConvNilToBytes(vaultdb.PrependNamespace(namespace, key))

	if err := transaction.tx.Delete(key); err != nil {
		return err
	}

	transaction.delCount++
	return nil
}

func (transaction *Transaction) Commit() error {
	writeStartT := time.Now()
	err := transaction.tx.Commit()
	writeEndT := time.Now()

	if writeEndT.Sub(writeStartT) > time.Millisecond*100 {
		logger.Warn().Str("name", transaction.db.name).Str("callstack1", log.SkipCaller(2)).Str("callstack2", log.SkipCaller(3)).
			Dur("prepareTime", writeStartT.Sub(transaction.createT)).
			Dur("takenTime", writeEndT.Sub(writeStartT)).
			Uint("delCount", transaction.delCount).Uint("setCount", transaction.setCount).
			Uint64("setKeySize", transaction.keySize).Uint64("setValueSize", transaction.valueSize).
			Msg("commit takes long time")
	}

	return err
}

func (transaction *Transaction) Discard() {
	transaction.tx.Discard()
}
