package keymutex

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultStripeCount is the default number of stripes.
const DefaultStripeCount = 64

// KeyMutex is a set of mutexes striped by key hash.
type KeyMutex struct {
	stripes []sync.Mutex
	mask    uint32
}

// New creates a KeyMutex with the default stripe count.
func New() *KeyMutex {
	return NewWithStripes(DefaultStripeCount)
}

// NewWithStripes creates a KeyMutex with the given stripe count.
// stripeCount must be a power of 2; invalid values fall back to the default.
func NewWithStripes(stripeCount int) *KeyMutex {
	if stripeCount <= 0 || stripeCount&(stripeCount-1) != 0 {
		stripeCount = DefaultStripeCount
	}
	return &KeyMutex{
		stripes: make([]sync.Mutex, stripeCount),
		mask:    uint32(stripeCount - 1),
	}
}

// Lock acquires the stripe owning key.
func (m *KeyMutex) Lock(key string) {
	m.stripes[m.index(key)].Lock()
}

// Unlock releases the stripe owning key.
func (m *KeyMutex) Unlock(key string) {
	m.stripes[m.index(key)].Unlock()
}

// WithLock runs fn while holding the stripe owning key.
func (m *KeyMutex) WithLock(key string, fn func()) {
	i := m.index(key)
	m.stripes[i].Lock()
	defer m.stripes[i].Unlock()
	fn()
}

func (m *KeyMutex) index(key string) uint32 {
	return murmur3.Sum32([]byte(key)) & m.mask
}
