// Package frame implements the animation-frame callback driver: a
// handle-indexed registry of once-per-tick callbacks invoked by the
// host's frame pump.
package frame

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Callback is an animation-frame callback. The argument is the frame
// timestamp in milliseconds. A returned error is reported to the error
// sink and does not stop the remaining callbacks in the same tick.
type Callback func(timestamp float64) error

// Driver holds the registered callbacks for one window, in registration
// order. Handles increase monotonically and are never reused.
type Driver struct {
	mu        sync.Mutex
	callbacks *linkedhashmap.Map // handle (int32) -> Callback
	next      int32
	report    func(error)
}

// NewDriver creates an empty driver. report receives uncaught callback
// errors; nil means discard.
func NewDriver(report func(error)) *Driver {
	if report == nil {
		report = func(error) {}
	}
	return &Driver{
		callbacks: linkedhashmap.New(),
		report:    report,
	}
}

// Add registers a callback for the next frame tick and returns its
// handle.
func (d *Driver) Add(cb Callback) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	d.callbacks.Put(d.next, cb)
	return d.next
}

// Remove unregisters a callback. No-op if the handle already fired or
// never existed.
func (d *Driver) Remove(handle int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks.Remove(handle)
}

// Len returns the number of callbacks waiting for the next tick.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callbacks.Size()
}

// Run invokes every callback registered before this tick, in
// registration order, passing timestamp. The registry is snapshotted and
// cleared first, so callbacks that re-register during the run are
// deferred to the next tick.
func (d *Driver) Run(timestamp float64) {
	d.mu.Lock()
	snapshot := make([]Callback, 0, d.callbacks.Size())
	d.callbacks.Each(func(_, value interface{}) {
		snapshot = append(snapshot, value.(Callback))
	})
	d.callbacks.Clear()
	d.mu.Unlock()

	for _, cb := range snapshot {
		if err := cb(timestamp); err != nil {
			d.report(err)
		}
	}
}
