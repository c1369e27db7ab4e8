// Package metrics keeps process-local operational counters. They reset
// on restart, same as the pending store they describe.
package metrics

import "sync/atomic"

type Counter struct {
	v atomic.Uint64
}

func (c *Counter) Inc()          { c.v.Add(1) }
func (c *Counter) Add(n uint64)  { c.v.Add(n) }
func (c *Counter) Value() uint64 { return c.v.Load() }

var (
	OrdersPlaced    Counter
	OrdersCompleted Counter
	OrdersCancelled Counter
	OrdersEvicted   Counter
	CodeRetries     Counter
)

// Snapshot returns the current counter values for the admin stats view.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"orders_placed":    OrdersPlaced.Value(),
		"orders_completed": OrdersCompleted.Value(),
		"orders_cancelled": OrdersCancelled.Value(),
		"orders_evicted":   OrdersEvicted.Value(),
		"code_retries":     CodeRetries.Value(),
	}
}
