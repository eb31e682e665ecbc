package engine

import "sync"

// MemoryCustody is an in-memory custody backend for tests and the
// simulator. Production deployments supply their own implementation of
// table.Custody.
type MemoryCustody struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryCustody() *MemoryCustody {
	return &MemoryCustody{balances: make(map[string]int64)}
}

// Credit adds amount to account's balance.
func (c *MemoryCustody) Credit(account string, amount int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[account] += amount
	return nil
}

// Balance returns account's accumulated credits.
func (c *MemoryCustody) Balance(account string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[account]
}

// Total returns the sum of all balances.
func (c *MemoryCustody) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int64
	for _, amt := range c.balances {
		sum += amt
	}
	return sum
}
