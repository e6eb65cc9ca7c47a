package pda

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgram = common.HexToAddress("0x7661756c74")

func TestFindAddressDeterministic(t *testing.T) {
	admin := common.HexToAddress("0xabcdef")
	addr1, bump1, err := FindAddress(testProgram, []byte("vault_state"), admin.Bytes())
	require.NoError(t, err)
	addr2, bump2, err := FindAddress(testProgram, []byte("vault_state"), admin.Bytes())
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)

	other, _, err := FindAddress(testProgram, []byte("vault_state"), common.HexToAddress("0xabcdee").Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, addr1, other)

	otherProgram, _, err := FindAddress(common.HexToAddress("0x01"), []byte("vault_state"), admin.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, addr1, otherProgram)
}

func TestFindAddressSkipsOnCurveBumps(t *testing.T) {
	seed := []byte("withdrawal")
	addr, bump, err := FindAddress(testProgram, seed)
	require.NoError(t, err)

	// Every bump above the one found must be on the curve.
	for b := 255; b > int(bump); b-- {
		_, err := CreateAddress(testProgram, seed, []byte{byte(b)})
		assert.ErrorIs(t, err, ErrOnCurve)
	}
	direct, err := CreateAddress(testProgram, seed, []byte{bump})
	require.NoError(t, err)
	assert.Equal(t, addr, direct)
}

func TestCreateAddressSeedLimits(t *testing.T) {
	_, err := CreateAddress(testProgram, bytes.Repeat([]byte{1}, MaxSeedLength+1))
	assert.ErrorIs(t, err, ErrSeedTooLong)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateAddress(testProgram, seeds...)
	assert.ErrorIs(t, err, ErrTooManySeeds)
}

func TestSignerAuthorizes(t *testing.T) {
	r, err := NewResolver(8)
	require.NoError(t, err)
	vault := common.HexToAddress("0x1234")
	signer, addr, err := r.Signer(testProgram, []byte("vault_token"), vault.Bytes())
	require.NoError(t, err)
	assert.NoError(t, signer.Authorizes(addr))

	assert.ErrorIs(t, signer.Authorizes(common.HexToAddress("0x99")), ErrSignerMismatch)

	forged := signer
	forged.Bump++
	assert.ErrorIs(t, forged.Authorizes(addr), ErrSignerMismatch)

	forged = signer
	forged.Program = common.HexToAddress("0x01")
	assert.ErrorIs(t, forged.Authorizes(addr), ErrSignerMismatch)
}

func TestResolverCaches(t *testing.T) {
	r, err := NewResolver(2)
	require.NoError(t, err)
	a1, b1, err := r.Find(testProgram, []byte("a"))
	require.NoError(t, err)
	a2, b2, err := r.Find(testProgram, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, r.Len())

	// Length prefixes keep ("ab") and ("a", "b") apart.
	joined, _, err := r.Find(testProgram, []byte("ab"))
	require.NoError(t, err)
	_, _, err = r.Find(testProgram, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.NotEqual(t, a1, joined)
}
