package core

import "reflect"

// Host is what a SubscriptionManager needs from the component it serves.
// ObserverElement implements it; other hosts can implement it directly.
type Host interface {
	// ClassSubjects returns the subjects the component type observes
	// regardless of its properties. May be nil.
	ClassSubjects() []Subject
	// PropertyOptions returns the declared metadata for name.
	PropertyOptions(name string) (PropertyOptions, bool)
	// PropertyValue returns the current value of name.
	PropertyValue(name string) any
	// ObserveUpdate is invoked when an observed subject notifies. name is
	// empty for class-level subscriptions.
	ObserveUpdate(subject Subject, name string)
}

// SubscriptionManager reconciles the subscriptions of one component. It keeps
// at most one named subscription per property and a set of unnamed
// subscriptions for class-level subjects.
//
// SubscriptionManager is NOT thread-safe. Like the rest of the component
// lifecycle it must only be driven from the goroutine that owns the element.
type SubscriptionManager struct {
	host    Host
	named   map[string]*Subscription
	unnamed []*Subscription
}

// NewSubscriptionManager creates a manager for host.
func NewSubscriptionManager(host Host) *SubscriptionManager {
	return &SubscriptionManager{
		host:  host,
		named: make(map[string]*Subscription),
	}
}

// ConnectClassSubscriptions subscribes to every class-level subject of the
// host. Each notification calls ObserveUpdate(subject, "").
func (m *SubscriptionManager) ConnectClassSubscriptions() {
	for _, subject := range m.host.ClassSubjects() {
		subject := subject
		if isNil(subject) {
			continue
		}
		m.AddSubscription(subject.Subscribe(func(*Observable) {
			m.host.ObserveUpdate(subject, "")
		}))
	}
}

// DisconnectSubscriptions unsubscribes and forgets every named and unnamed
// subscription. Safe to call when nothing is connected.
func (m *SubscriptionManager) DisconnectSubscriptions() {
	for name, sub := range m.named {
		sub.Unsubscribe()
		delete(m.named, name)
	}
	for _, sub := range m.unnamed {
		sub.Unsubscribe()
	}
	m.unnamed = nil
}

// ManagePropertyChange reconciles the subscription for name after its value
// changed from previous. Nothing happens if the value is still the same
// reference or the property is not declared with Observe.
func (m *SubscriptionManager) ManagePropertyChange(name string, previous any) {
	current := m.host.PropertyValue(name)
	if sameValue(previous, current) {
		return
	}

	options, ok := m.host.PropertyOptions(name)
	if !ok || !options.Observe {
		return
	}

	m.SubscribeToProperty(name, current)
}

// UnsubscribeFromProperty drops the named subscription for name. Reports
// whether one existed.
func (m *SubscriptionManager) UnsubscribeFromProperty(name string) bool {
	sub, ok := m.named[name]
	if !ok {
		return false
	}
	delete(m.named, name)
	sub.Unsubscribe()
	return true
}

// SubscribeToProperty replaces the subscription for name with one on
// candidate. Any previous subscription for name is always dropped first.
// Returns false, leaving name unbound, if candidate is nil or not a Subject.
func (m *SubscriptionManager) SubscribeToProperty(name string, candidate any) bool {
	m.UnsubscribeFromProperty(name)

	subject, ok := candidate.(Subject)
	if !ok || isNil(subject) {
		return false
	}

	m.named[name] = subject.Subscribe(func(*Observable) {
		m.host.ObserveUpdate(subject, name)
	})
	return true
}

// AddSubscription tracks sub as an unnamed subscription, torn down on
// DisconnectSubscriptions. Nil is ignored.
func (m *SubscriptionManager) AddSubscription(sub *Subscription) {
	if sub == nil {
		return
	}
	m.unnamed = append(m.unnamed, sub)
}

// NamedSubscription returns the active subscription for name, or nil.
func (m *SubscriptionManager) NamedSubscription(name string) *Subscription {
	return m.named[name]
}

// Len returns the number of named and unnamed subscriptions.
func (m *SubscriptionManager) Len() (named, unnamed int) {
	return len(m.named), len(m.unnamed)
}

// sameValue reports whether a and b are the same reference. Reference kinds
// compare by address, other comparable values by ==, and anything else is
// treated as different.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Type().Comparable() {
		return false
	}
	return equalComparable(va, vb)
}

// equalComparable is va.Equal(vb) for types that are comparable but may hold
// interface fields with non-comparable dynamic values.
func equalComparable(va, vb reflect.Value) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return va.Equal(vb)
}

// isNil reports whether v is nil or wraps a nil pointer, map, slice, func,
// chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
