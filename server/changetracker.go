package server

import (
	"sync/atomic"

	"github.com/fieldbuslab/modserve/image"
)

// A ChangeSet carries the addresses mutated in one region during a single
// processing cycle, each address once, in order of first mutation.
type ChangeSet struct {
	Region    image.Kind
	Addresses []uint16
}

// A ChangeTracker collects the addresses mutated during a processing cycle.
// The transport-specific processing routine reports every mutation to the
// tracker; the server emits the accumulated sets as change notifications at
// the end of the cycle.
//
// The tracker is not safe for concurrent use. It is only touched from within
// a cycle, and the server never runs two cycles at a time.
type ChangeTracker struct {
	// enabled is settable from outside the cycle goroutine.
	enabled atomic.Bool

	registerAddrs []uint16
	registerSeen  map[uint16]struct{}
	coilAddrs     []uint16
	coilSeen      map[uint16]struct{}
}

// NewChangeTracker creates an enabled ChangeTracker.
func NewChangeTracker() *ChangeTracker {
	t := &ChangeTracker{
		registerSeen: make(map[uint16]struct{}),
		coilSeen:     make(map[uint16]struct{}),
	}
	t.enabled.Store(true)

	return t
}

// SetEnabled turns change accumulation on or off. While disabled, Record
// calls are dropped and no notification fires.
func (t *ChangeTracker) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Enabled reports whether change accumulation is on.
func (t *ChangeTracker) Enabled() bool {
	return t.enabled.Load()
}

// RecordRegisterChange records a mutated holding register address.
// Recording the same address twice within a cycle does not duplicate it.
func (t *ChangeTracker) RecordRegisterChange(address uint16) {
	if !t.enabled.Load() {
		return
	}

	if _, seen := t.registerSeen[address]; seen {
		return
	}

	t.registerSeen[address] = struct{}{}
	t.registerAddrs = append(t.registerAddrs, address)
}

// RecordCoilChange records a mutated coil address. Recording the same
// address twice within a cycle does not duplicate it.
func (t *ChangeTracker) RecordCoilChange(address uint16) {
	if !t.enabled.Load() {
		return
	}

	if _, seen := t.coilSeen[address]; seen {
		return
	}

	t.coilSeen[address] = struct{}{}
	t.coilAddrs = append(t.coilAddrs, address)
}

// RegisterChanges returns the distinct holding register addresses mutated so
// far in this cycle, in order of first mutation.
func (t *ChangeTracker) RegisterChanges() []uint16 {
	return t.registerAddrs
}

// CoilChanges returns the distinct coil addresses mutated so far in this
// cycle, in order of first mutation.
func (t *ChangeTracker) CoilChanges() []uint16 {
	return t.coilAddrs
}

// Reset discards the accumulated change sets. The server calls it at the
// start of every cycle.
func (t *ChangeTracker) Reset() {
	t.registerAddrs = nil
	t.coilAddrs = nil

	if len(t.registerSeen) > 0 {
		t.registerSeen = make(map[uint16]struct{})
	}

	if len(t.coilSeen) > 0 {
		t.coilSeen = make(map[uint16]struct{})
	}
}
