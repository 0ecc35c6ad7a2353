// Package driver aggregates the per-driver telemetry contributions of the
// sensor and actuator drivers.
package driver

import (
	"sort"
	"sync"

	"github.com/banshee-data/qgclink/internal/mavlink"
)

// Message is one message a driver wants sent, tagged with the component id
// it is sent from.
type Message struct {
	ComponentID uint8
	Body        mavlink.Message
}

// Driver contributes messages to the downlink. Drivers schedule themselves
// from (baseRate, iteration) with the same modulo convention the downlink
// uses, and return nothing on iterations they skip.
type Driver interface {
	Name() string
	MavlinkMessages(sysID uint8, baseRate int, iteration uint64) []Message
}

// Registry is the set of active drivers. It is safe for concurrent use;
// drivers may come and go while the downlink is running.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Add registers d, replacing any driver with the same name in place.
func (r *Registry) Add(d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := d.Name()
	if _, ok := r.drivers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.drivers[name] = d
}

// Remove unregisters the driver called name. It reports whether one was
// registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[name]; !ok {
		return false
	}
	delete(r.drivers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Drivers returns the active drivers in registration order.
func (r *Registry) Drivers() []Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Driver, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.drivers[name])
	}
	return out
}

// Names returns the active driver names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
