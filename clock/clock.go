// Package clock provides the time source operations read at call time.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current unix time in seconds.
type Clock interface {
	Now() int64
}

type System struct{}

func (System) Now() int64 {
	return time.Now().Unix()
}

// Manual is a clock moved by hand.
type Manual struct {
	lock sync.Mutex
	now  int64
}

func NewManual(now int64) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.now
}

func (m *Manual) Set(now int64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.now = now
}

func (m *Manual) Advance(d time.Duration) int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.now += int64(d / time.Second)
	return m.now
}
