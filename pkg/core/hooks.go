package core

import "sync"

// Observe subscribes the component to subject until its next disconnect.
// Notifications reach the component's ObserveUpdate hook with an empty
// property name, like class-level subjects. Call it from Connected, not from
// Update, or the component subscribes once per update cycle.
//
// Example:
//
//	func (s *statusBar) Connected() {
//	    core.Observe(s, s.connection)
//	}
//
// Returns nil if the component is not hosted by an ObserverElement or subject
// is nil.
func Observe(c componentBase, subject Subject) *Subscription {
	element := c.base().element
	if element == nil || isNil(subject) {
		return nil
	}
	sub := subject.Subscribe(func(*Observable) {
		element.ObserveUpdate(subject, "")
	})
	element.manager.AddSubscription(sub)
	return sub
}

// Value is an Observable that holds a value and notifies its subscribers
// whenever the value is set. It is a Subject, so it can be assigned to an
// observed property directly.
//
// Example:
//
//	count := core.NewValue(0)
//	element.SetProperty("count", count)
//	count.Set(count.Get() + 1) // the component updates
type Value[T any] struct {
	Observable
	valueMu sync.RWMutex
	value   T
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.valueMu.RLock()
	defer v.valueMu.RUnlock()
	return v.value
}

// Set stores value and notifies subscribers.
func (v *Value[T]) Set(value T) {
	v.valueMu.Lock()
	v.value = value
	v.valueMu.Unlock()
	v.Notify()
}

// Update applies transform to the current value, stores the result and
// notifies subscribers.
func (v *Value[T]) Update(transform func(T) T) {
	v.valueMu.Lock()
	v.value = transform(v.value)
	v.valueMu.Unlock()
	v.Notify()
}
