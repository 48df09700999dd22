package registry

import (
	"sync"

	"github.com/google/uuid"

	"futprint/internal/host"
	"futprint/internal/printers"
)

// LookupFunc is one element of a printer chain.
type LookupFunc func(host.Value) printers.Printer

// Registration identifies an appended lookup function.
type Registration struct {
	ID    uuid.UUID
	Chain uuid.UUID
	Name  string
}

type link struct {
	reg Registration
	fn  LookupFunc
}

// Chain is the host's append-only printer list. It is created per
// session, appended to at registration and left inert afterwards; it is
// never mutated by printing.
type Chain struct {
	id    uuid.UUID
	mu    sync.RWMutex
	links []link
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{id: uuid.New()}
}

var (
	defaultOnce  sync.Once
	defaultChain *Chain
)

// DefaultChain returns the process-wide chain.
func DefaultChain() *Chain {
	defaultOnce.Do(func() { defaultChain = NewChain() })
	return defaultChain
}

// ID identifies the chain.
func (c *Chain) ID() uuid.UUID { return c.id }

// Append adds fn at the end of the chain.
func (c *Chain) Append(name string, fn LookupFunc) Registration {
	reg := Registration{ID: uuid.New(), Chain: c.id, Name: name}
	c.mu.Lock()
	c.links = append(c.links, link{reg: reg, fn: fn})
	c.mu.Unlock()
	return reg
}

// Remove drops a registration. It reports whether it was present.
func (c *Chain) Remove(reg Registration) bool {
	if reg.Chain != c.id {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, l := range c.links {
		if l.reg.ID == reg.ID {
			c.links = append(c.links[:i:i], c.links[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered functions.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.links)
}

// Registrations lists the chain in lookup order.
func (c *Chain) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Registration, len(c.links))
	for i, l := range c.links {
		out[i] = l.reg
	}
	return out
}

// Lookup asks each function in order; the first printer wins. The list is
// snapshotted first so printers may call back into the chain.
func (c *Chain) Lookup(value host.Value) printers.Printer {
	c.mu.RLock()
	links := c.links
	c.mu.RUnlock()
	for _, l := range links {
		if p := l.fn(value); p != nil {
			return p
		}
	}
	return nil
}

// Register appends r's lookup to chain, or to the default chain when
// chain is nil. Calling it twice registers twice.
func Register(chain *Chain, r *Registry) Registration {
	if chain == nil {
		chain = DefaultChain()
	}
	return chain.Append("futures", r.Lookup)
}
