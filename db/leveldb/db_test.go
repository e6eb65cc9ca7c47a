package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var namespaceTest = []byte("t")

func TestLevelDBRoundTrip(t *testing.T) {
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	tx := db.NewTx()
	require.NoError(t, tx.Set(namespaceTest, []byte("a"), []byte("1")))
	require.NoError(t, tx.Set(namespaceTest, []byte("b"), []byte("2")))
	require.NoError(t, tx.Set(namespaceTest, []byte("c"), []byte("3")))
	require.NoError(t, tx.Commit())

	value, exists, err := db.Get(namespaceTest, []byte("b"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("2"), value)

	discarded := db.NewTx()
	require.NoError(t, discarded.Delete(namespaceTest, []byte("a")))
	discarded.Discard()
	assert.Error(t, discarded.Commit())
	exists, err = db.Exist(namespaceTest, []byte("a"))
	require.NoError(t, err)
	assert.True(t, exists)

	iter := db.Iterator([]byte("t|c"), []byte("t|a"))
	defer iter.Release()
	var keys []string
	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		require.NoError(t, err)
		keys = append(keys, string(key))
	}
	assert.Equal(t, []string{"t|c", "t|b"}, keys)
}
