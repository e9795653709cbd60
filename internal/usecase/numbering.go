package usecase

import (
	"fmt"
	"sync"
	"time"

	"mis_invoicing/internal/usecase/interfaces"
)

const (
	EstimateNumberPrefix = "EST"
	InvoiceNumberPrefix  = "INV"
)

// TimestampNumberGenerator issues "<prefix>-<unix millis>" numbers.
//
// Numbers are strictly increasing within one process: when two calls land in
// the same millisecond the second one is bumped to last+1. Uniqueness across
// processes is left to the store (unique index on SQL backends).
type TimestampNumberGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

var _ interfaces.INumberGenerator = (*TimestampNumberGenerator)(nil)

func NewTimestampNumberGenerator() *TimestampNumberGenerator {
	return &TimestampNumberGenerator{now: time.Now}
}

func (g *TimestampNumberGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return fmt.Sprintf("%s-%d", prefix, n)
}
