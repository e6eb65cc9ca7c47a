package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	data := []byte("deposit 1000")
	sig, err := SignData(key, data)
	require.NoError(t, err)

	recovered, err := RecoverSigner(data, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered)
	assert.True(t, SigIsValid(addr, data, sig))

	recovered, err = RecoverSigner([]byte("deposit 1001"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, addr, recovered)

	_, err = RecoverSigner(data, sig[:10])
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestKeystoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	addr, path, err := NewKeystoreKey(dir, "pw")
	require.NoError(t, err)

	key, err := GetPrivateKeyFromKeystore(path, "pw")
	require.NoError(t, err)
	assert.Equal(t, addr, crypto.PubkeyToAddress(key.PublicKey))

	_, err = GetPrivateKeyFromKeystore(path, "wrong")
	assert.Error(t, err)
}
