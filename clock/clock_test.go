package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	c := NewManual(100)
	assert.Equal(t, int64(100), c.Now())
	assert.Equal(t, int64(100+86400), c.Advance(24*time.Hour))
	c.Set(5)
	assert.Equal(t, int64(5), c.Now())
}

func TestSystem(t *testing.T) {
	before := time.Now().Unix()
	now := System{}.Now()
	assert.GreaterOrEqual(t, now, before)
}
