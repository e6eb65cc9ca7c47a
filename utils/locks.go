package utils

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// KeyedMutex hands out one mutex per address. Entries are dropped once no
// goroutine holds or waits for them.
type KeyedMutex struct {
	lock  sync.Mutex
	locks map[common.Address]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[common.Address]*refMutex)}
}

func (k *KeyedMutex) Lock(addr common.Address) {
	k.lock.Lock()
	m, ok := k.locks[addr]
	if !ok {
		m = &refMutex{}
		k.locks[addr] = m
	}
	m.refs++
	k.lock.Unlock()

	m.Lock()
}

func (k *KeyedMutex) Unlock(addr common.Address) {
	k.lock.Lock()
	defer k.lock.Unlock()
	m, ok := k.locks[addr]
	if !ok {
		panic("utils: unlock of unlocked address " + addr.Hex())
	}
	m.refs--
	if m.refs == 0 {
		delete(k.locks, addr)
	}
	m.Unlock()
}

func (k *KeyedMutex) Len() int {
	k.lock.Lock()
	defer k.lock.Unlock()
	return len(k.locks)
}
