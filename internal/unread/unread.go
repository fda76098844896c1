// Package unread holds the server-authoritative unread counter.
package unread

import (
	"fmt"
	"sync"
)

// Counter is safe for concurrent use. The zero value reads 0.
type Counter struct {
	mu    sync.RWMutex
	count int
}

// Reset forces the count to zero. Used when unauthenticated; no request is made.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()
}

// Set applies a freshly fetched count. Negative values clamp to zero.
func (c *Counter) Set(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.count = n
	c.mu.Unlock()
}

// Count returns the last known value.
func (c *Counter) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// BadgeLabel renders the menu entry, with the count only when positive.
func BadgeLabel(n int) string {
	if n > 0 {
		return fmt.Sprintf("오퍼관리(%d)", n)
	}
	return "오퍼관리"
}
