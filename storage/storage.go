// Package storage is the account substrate. Accounts live at deterministic
// addresses, belong to one owner program, and hold a rent deposit paid from
// a native balance and refunded on close. All mutation goes through a Batch.
package storage

import (
	"errors"
	"math/bits"
	"sync"

	"github.com/celer-network/go-vault/db"
	"github.com/celer-network/go-vault/log"
	"github.com/celer-network/go-vault/types"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrOwnerMismatch      = errors.New("account owned by another program")
	ErrSizeMismatch       = errors.New("data length differs from allocated size")
	ErrInsufficientNative = errors.New("insufficient native balance")
	ErrNativeOverflow     = errors.New("native balance overflow")
	ErrConflict           = errors.New("concurrent write conflict")
	ErrBatchClosed        = errors.New("batch already committed or discarded")
)

const (
	// AccountStorageOverhead is charged on top of the data size.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionYears      = 2
)

var logger = log.NewLogger("storage")

type RentConfig struct {
	LamportsPerByteYear uint64
	ExemptionYears      uint64
}

func DefaultRentConfig() RentConfig {
	return RentConfig{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionYears:      DefaultExemptionYears,
	}
}

type Storage struct {
	db         db.DB
	serializer *types.Serializer
	rent       RentConfig

	// commitLock orders read validation and write of concurrent batches.
	commitLock sync.Mutex
}

func NewStorage(database db.DB, serializer *types.Serializer, rent RentConfig) *Storage {
	return &Storage{
		db:         database,
		serializer: serializer,
		rent:       rent,
	}
}

func (s *Storage) Serializer() *types.Serializer {
	return s.serializer
}

func (s *Storage) DB() db.DB {
	return s.db
}

// RentExempt is the deposit required to hold an account of size data bytes.
func (s *Storage) RentExempt(size uint64) (uint64, error) {
	total, carry := bits.Add64(size, AccountStorageOverhead, 0)
	if carry != 0 {
		return 0, ErrNativeOverflow
	}
	hi, perYear := bits.Mul64(total, s.rent.LamportsPerByteYear)
	if hi != 0 {
		return 0, ErrNativeOverflow
	}
	hi, rent := bits.Mul64(perYear, s.rent.ExemptionYears)
	if hi != 0 {
		return 0, ErrNativeOverflow
	}
	return rent, nil
}

// Begin opens a batch reading through to committed state.
func (s *Storage) Begin() *Batch {
	return newBatch(s)
}
