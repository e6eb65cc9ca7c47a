// Package pda derives program addresses: identities computed from a program
// and a list of seeds that no private key can sign for.
package pda

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

const (
	MaxSeedLength = 32
	MaxSeeds      = 16
)

var (
	ErrSeedTooLong    = errors.New("seed longer than 32 bytes")
	ErrTooManySeeds   = errors.New("more than 16 seeds")
	ErrOnCurve        = errors.New("derived point is on the curve")
	ErrNoViableBump   = errors.New("no viable bump seed")
	ErrSignerMismatch = errors.New("derived signer does not match address")
)

var marker = []byte("ProgramDerivedAddress")

// CreateAddress hashes seeds, the program and a fixed marker. The result is
// rejected if it is the x coordinate of a secp256k1 point, since a key for it
// could exist.
func CreateAddress(program common.Address, seeds ...[]byte) (common.Address, error) {
	if len(seeds) > MaxSeeds {
		return common.Address{}, ErrTooManySeeds
	}
	hasher := sha3.NewLegacyKeccak256()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return common.Address{}, fmt.Errorf("%w: %x", ErrSeedTooLong, seed)
		}
		hasher.Write(seed)
	}
	hasher.Write(program.Bytes())
	hasher.Write(marker)
	digest := hasher.Sum(nil)

	if onCurve(digest) {
		return common.Address{}, ErrOnCurve
	}
	return common.BytesToAddress(digest[12:]), nil
}

func onCurve(x []byte) bool {
	compressed := make([]byte, 0, 33)
	compressed = append(compressed, 0x02)
	compressed = append(compressed, x...)
	_, err := crypto.DecompressPubkey(compressed)
	return err == nil
}

// FindAddress searches bumps from 255 down and returns the first off-curve
// address together with its bump.
func FindAddress(program common.Address, seeds ...[]byte) (common.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateAddress(program, withBump...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableBump
}

// Signer proves authority over a derived address without a key. Only the
// program holding the seeds can construct one that matches.
type Signer struct {
	Program common.Address
	Seeds   [][]byte
	Bump    uint8
}

func (s Signer) Address() (common.Address, error) {
	seeds := make([][]byte, 0, len(s.Seeds)+1)
	seeds = append(seeds, s.Seeds...)
	seeds = append(seeds, []byte{s.Bump})
	return CreateAddress(s.Program, seeds...)
}

// Authorizes re-derives the signer's address and compares it to addr.
func (s Signer) Authorizes(addr common.Address) error {
	derived, err := s.Address()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignerMismatch, err)
	}
	if derived != addr {
		return fmt.Errorf("%w: derived %s, want %s", ErrSignerMismatch, derived.Hex(), addr.Hex())
	}
	return nil
}
