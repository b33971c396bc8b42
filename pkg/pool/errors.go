// Package pool provides ants-backed worker pools.
package pool

import "errors"

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolOverload is returned by nonblocking pools that are full.
	ErrPoolOverload = errors.New("pool is full")
)
