package pda

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

const DefaultCacheSize = 4096

type derived struct {
	addr common.Address
	bump uint8
}

// Resolver memoizes FindAddress. The bump search can take hundreds of
// hashes and point checks, and the same seeds are resolved on every call.
type Resolver struct {
	cache *lru.Cache
}

func NewResolver(cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{cache: cache}, nil
}

func (r *Resolver) Find(program common.Address, seeds ...[]byte) (common.Address, uint8, error) {
	key := cacheKey(program, seeds)
	if v, ok := r.cache.Get(key); ok {
		d := v.(derived)
		return d.addr, d.bump, nil
	}
	addr, bump, err := FindAddress(program, seeds...)
	if err != nil {
		return common.Address{}, 0, err
	}
	r.cache.Add(key, derived{addr: addr, bump: bump})
	return addr, bump, nil
}

// Signer returns the signer capability for the derived address of seeds.
func (r *Resolver) Signer(program common.Address, seeds ...[]byte) (Signer, common.Address, error) {
	addr, bump, err := r.Find(program, seeds...)
	if err != nil {
		return Signer{}, common.Address{}, err
	}
	return Signer{Program: program, Seeds: seeds, Bump: bump}, addr, nil
}

func (r *Resolver) Len() int {
	return r.cache.Len()
}

func cacheKey(program common.Address, seeds [][]byte) string {
	buf := make([]byte, 0, common.AddressLength+len(seeds)*(MaxSeedLength+1))
	buf = append(buf, program.Bytes()...)
	for _, seed := range seeds {
		buf = binary.AppendUvarint(buf, uint64(len(seed)))
		buf = append(buf, seed...)
	}
	return string(buf)
}
