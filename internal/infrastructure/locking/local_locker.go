// Package locking serializes invoice reconciliation per invoice ID, inside
// one process (KeyedLocker) or across instances (RedisLocker).
package locking

import (
	"context"
	"sync"

	"mis_invoicing/internal/usecase/interfaces"
)

// KeyedLocker hands out one lock per key. Entries are dropped once nobody
// holds or waits for them.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch      chan struct{}
	waiters int
}

var _ interfaces.IInvoiceLocker = (*KeyedLocker)(nil)

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedEntry)}
}

func (l *KeyedLocker) Lock(ctx context.Context, invoiceID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[invoiceID]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		l.locks[invoiceID] = e
	}
	e.waiters++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(invoiceID, e, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(invoiceID, e, true) })
	}, nil
}

func (l *KeyedLocker) release(key string, e *keyedEntry, held bool) {
	if held {
		<-e.ch
	}
	l.mu.Lock()
	e.waiters--
	if e.waiters == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// size is the number of live keys.
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
