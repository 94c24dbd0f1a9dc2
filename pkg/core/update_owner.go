package core

import "sync"

// UpdateOwner coalesces update requests from elements and performs them in
// batches. An element requesting several updates before a flush is updated
// once.
type UpdateOwner struct {
	dirty    []*ObserverElement
	dirtySet map[*ObserverElement]bool
	mu       sync.Mutex

	// OnNeedsFlush is called when an element is newly scheduled, signalling
	// the host that FlushUpdates should run soon. Hosts with their own frame
	// loop use it to wake that loop.
	OnNeedsFlush func()
}

// NewUpdateOwner creates a new UpdateOwner.
func NewUpdateOwner() *UpdateOwner {
	return &UpdateOwner{}
}

// ScheduleUpdate queues element for the next flush. Elements already queued
// are not queued twice.
func (o *UpdateOwner) ScheduleUpdate(element *ObserverElement) {
	added := func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.dirtySet[element] {
			return false
		}
		if o.dirtySet == nil {
			o.dirtySet = make(map[*ObserverElement]bool)
		}
		o.dirtySet[element] = true
		o.dirty = append(o.dirty, element)
		return true
	}()

	if added && o.OnNeedsFlush != nil {
		o.OnNeedsFlush()
	}
}

// NeedsWork returns true if any element is waiting to be updated.
func (o *UpdateOwner) NeedsWork() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.dirty) > 0
}

// FlushUpdates performs every pending update in scheduling order. Updates
// requested while flushing are performed before FlushUpdates returns.
func (o *UpdateOwner) FlushUpdates() {
	for {
		o.mu.Lock()
		if len(o.dirty) == 0 {
			o.mu.Unlock()
			return
		}
		dirty := o.dirty
		o.dirty = nil
		clear(o.dirtySet)
		o.mu.Unlock()

		for _, element := range dirty {
			element.PerformUpdate()
		}
	}
}
