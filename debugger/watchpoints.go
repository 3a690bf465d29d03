package debugger

import (
	"sync"

	"github.com/archerh/casm/machine"
)

// Watchpoint monitors one general-purpose register for a value change.
// Grounded on the teacher's WatchpointManager; casm narrows its three
// read/write/read-write watch kinds down to plain value-equality, since
// casm's register file has no separate read-access trap to hook into —
// the teacher's own comment notes all three kinds already degrade to
// value-change detection in practice.
type Watchpoint struct {
	ID        int
	Register  int
	Enabled   bool
	LastValue int32
	HitCount  int
}

// WatchpointManager tracks every watchpoint for one debugging session.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates an empty manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// Add starts watching register, seeded with its current value.
func (wm *WatchpointManager) Add(register int, currentValue int32) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{ID: wm.nextID, Register: register, Enabled: true, LastValue: currentValue}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// Delete removes the watchpoint with the given ID, reporting whether one
// was found.
func (wm *WatchpointManager) Delete(id int) bool {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; exists {
		delete(wm.watchpoints, id)
		return true
	}
	return false
}

// List returns every watchpoint, unordered.
func (wm *WatchpointManager) List() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	out := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		out = append(out, wp)
	}
	return out
}

// CheckAll compares every watchpoint's register against registers and
// returns the ones whose value changed, updating LastValue and HitCount
// as it goes.
func (wm *WatchpointManager) CheckAll(registers [machine.NumRegisters]int32) []*Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	var triggered []*Watchpoint
	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		current := registers[wp.Register]
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			triggered = append(triggered, wp)
		}
	}
	return triggered
}
