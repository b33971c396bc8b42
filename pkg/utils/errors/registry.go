package errors

import (
	"fmt"
	"sync"
)

var (
	registryMu    sync.RWMutex
	errnoRegistry = map[int]*Errno{}
)

// Register records an Errno under its code and returns it, so error
// definitions can be declared as package variables. Duplicate codes are
// a programming error and panic at init.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := errnoRegistry[e.Code]; ok {
		panic(fmt.Sprintf("errno code %d already registered: %s", e.Code, existing.MessageEN))
	}
	errnoRegistry[e.Code] = e
	return e
}

// Lookup returns the Errno registered under code, if any.
func Lookup(code int) (*Errno, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := errnoRegistry[code]
	return e, ok
}
