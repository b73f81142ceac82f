package core

import (
	"github.com/readmoa/moachat/schema"
)

// Dock tracks which room panels are open and which of those are minimized,
// under a hard cap on simultaneously open rooms. Minimized rooms stay open
// for connection purposes; they are only hidden from view. The cap lives
// here rather than in the multiplexer so callers with different resource
// budgets can reuse the Mux unmodified.
//
// Dock has no internal locking; it is owned by the service and mutated only
// under the service mutex.
type Dock struct {
	max       int
	open      []schema.RoomID
	minimized map[schema.RoomID]struct{}
}

// NewDock constructs a dock with the given open-room cap.
func NewDock(max int) *Dock {
	if max <= 0 {
		max = schema.DefaultMaxOpenRooms
	}
	return &Dock{max: max, minimized: make(map[schema.RoomID]struct{})}
}

// Open appends the room to the open set. Opening an already-open room is a
// no-op except that it un-minimizes it (bringing a minimized panel to the
// foreground is equivalent to re-opening it). Opening past the cap returns
// ErrRoomLimit with no state change.
func (d *Dock) Open(id schema.RoomID) error {
	if d.IsOpen(id) {
		delete(d.minimized, id)
		return nil
	}
	if len(d.open) >= d.max {
		return schema.ErrRoomLimit
	}
	d.open = append(d.open, id)
	return nil
}

// Close removes the room from both the open and minimized sets. Idempotent.
func (d *Dock) Close(id schema.RoomID) {
	for i, open := range d.open {
		if open == id {
			d.open = append(d.open[:i], d.open[i+1:]...)
			break
		}
	}
	delete(d.minimized, id)
}

// Minimize hides an open, not-yet-minimized room panel. The room remains in
// the open set. No-op otherwise.
func (d *Dock) Minimize(id schema.RoomID) {
	if !d.IsOpen(id) {
		return
	}
	d.minimized[id] = struct{}{}
}

// Restore brings a minimized room panel back into view. No-op if absent.
func (d *Dock) Restore(id schema.RoomID) {
	delete(d.minimized, id)
}

// IsOpen reports whether the room is in the open set.
func (d *Dock) IsOpen(id schema.RoomID) bool {
	for _, open := range d.open {
		if open == id {
			return true
		}
	}
	return false
}

// IsMinimized reports whether the room is minimized.
func (d *Dock) IsMinimized(id schema.RoomID) bool {
	_, ok := d.minimized[id]
	return ok
}

// OpenIDs returns the open rooms in dock order. The slice is a copy.
func (d *Dock) OpenIDs() []schema.RoomID {
	out := make([]schema.RoomID, len(d.open))
	copy(out, d.open)
	return out
}

// Cap returns the open-room limit.
func (d *Dock) Cap() int {
	return d.max
}
