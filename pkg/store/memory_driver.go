package store

import (
	"sync"

	"github.com/arcs-core/arcs/pkg/vv"
)

// MemoryDriver is a Driver backed by an in-process map. It never fails a
// Send, so it's useful for deterministic unit tests of ReferenceModeStore
// logic that don't want to exercise the retry path; FlakyMemoryDriver
// below does exercise it.
type MemoryDriver struct {
	mu        sync.Mutex
	entries   map[string]entry
	receivers map[string]func(data []byte, version vv.VersionVector)
}

type entry struct {
	data    []byte
	version vv.VersionVector
}

// NewMemoryDriver returns an empty MemoryDriver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		entries:   make(map[string]entry),
		receivers: make(map[string]func(data []byte, version vv.VersionVector)),
	}
}

func (d *MemoryDriver) RegisterReceiver(key string, callback func(data []byte, version vv.VersionVector)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receivers[key] = callback
}

func (d *MemoryDriver) Send(key string, data []byte, version vv.VersionVector) bool {
	d.mu.Lock()
	d.entries[key] = entry{data: data, version: version}
	d.mu.Unlock()
	return true
}

func (d *MemoryDriver) Close() error { return nil }

// Deliver simulates a remote write arriving at key, invoking the
// registered receiver if one is present. Tests use this to simulate the
// backing-before-container or container-before-backing race the
// reference-mode store must tolerate.
func (d *MemoryDriver) Deliver(key string, data []byte, version vv.VersionVector) {
	d.mu.Lock()
	d.entries[key] = entry{data: data, version: version}
	cb := d.receivers[key]
	d.mu.Unlock()
	if cb != nil {
		cb(data, version)
	}
}

// Get returns the last value sent or delivered for key.
func (d *MemoryDriver) Get(key string) ([]byte, vv.VersionVector, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[key]
	return e.data, e.version, ok
}

// FlakyMemoryDriver wraps a MemoryDriver, failing Send a scheduled number
// of times for a given key before passing through. Tests use it to
// exercise ReferenceModeStore's send-retry bookkeeping.
type FlakyMemoryDriver struct {
	*MemoryDriver
	mu        sync.Mutex
	failsLeft map[string]int
}

// NewFlakyMemoryDriver returns a driver with no scheduled failures; use
// SetFailuresFor to arm it before exercising a retry scenario.
func NewFlakyMemoryDriver() *FlakyMemoryDriver {
	return &FlakyMemoryDriver{
		MemoryDriver: NewMemoryDriver(),
		failsLeft:    map[string]int{},
	}
}

func (d *FlakyMemoryDriver) Send(key string, data []byte, version vv.VersionVector) bool {
	d.mu.Lock()
	if d.failsLeft[key] > 0 {
		d.failsLeft[key]--
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()
	return d.MemoryDriver.Send(key, data, version)
}

// SetFailuresFor schedules n forthcoming Send failures for key.
func (d *FlakyMemoryDriver) SetFailuresFor(key string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failsLeft[key] = n
}
