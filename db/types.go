package db

// DB is a namespaced key-value store. The vault keeps accounts, native
// balances, nonces and the audit log in it.
type DB interface {
	Type() string
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Get(namespace []byte, key []byte) ([]byte, bool, error)
	Exist(namespace []byte, key []byte) (bool, error)
	// Iterator walks raw (namespace-prefixed) keys in [start, end). If start is
	// bigger than end the walk is in reverse order.
	Iterator(start []byte, end []byte) Iterator
	NewTx() Transaction
	NewBulk() Bulk
	Close() error
}

// Transaction applies a set of writes atomically. storage.Batch commits
// through one.
type Transaction interface {
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Commit() error
	Discard()
}

// Bulk buffers large maintenance writes such as event pruning. Unlike a
// Transaction it may flush in several internal commits.
type Bulk interface {
	Set(namespace []byte, key []byte, value []byte) error
	Delete(namespace []byte, key []byte) error
	Flush() error
	DiscardLast()
}

type Iterator interface {
	Next() error
	Valid() bool
	Key() ([]byte, error)
	Value() ([]byte, error)
	Release()
}
