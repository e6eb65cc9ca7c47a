package badgerdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultdb "github.com/celer-network/go-vault/db"
)

var namespaceTest = []byte("t")

func openTestDB(t *testing.T) *DB {
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerSetGet(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, "badgerdb", db.Type())

	_, exists, err := db.Get(namespaceTest, []byte("missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.Set(namespaceTest, []byte("k"), []byte("v")))
	value, exists, err := db.Get(namespaceTest, []byte("k"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, db.Delete(namespaceTest, []byte("k")))
	exists, err = db.Exist(namespaceTest, []byte("k"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBadgerTransaction(t *testing.T) {
	db := openTestDB(t)

	tx := db.NewTx()
	require.NoError(t, tx.Set(namespaceTest, []byte("a"), []byte("1")))
	tx.Discard()
	exists, err := db.Exist(namespaceTest, []byte("a"))
	require.NoError(t, err)
	assert.False(t, exists)

	tx = db.NewTx()
	require.NoError(t, tx.Set(namespaceTest, []byte("a"), []byte("1")))
	require.NoError(t, tx.Set(namespaceTest, []byte("b"), []byte("2")))
	require.NoError(t, tx.Commit())

	start, end := vaultdb.PrefixRange(namespaceTest, nil)
	iter := db.Iterator(start, end)
	defer iter.Release()
	var keys []string
	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		require.NoError(t, err)
		keys = append(keys, string(key))
	}
	assert.Equal(t, []string{"t|a", "t|b"}, keys)
}
