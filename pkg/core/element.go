package core

import (
	"reflect"
	"time"

	"github.com/go-drift/observe/pkg/errors"
)

// ObserverElement hosts one Component and binds its properties and lifecycle
// to a SubscriptionManager:
//
//   - SetProperty records (name, previous) changes and requests an update.
//   - Each update cycle runs ManagePropertyChange for every recorded change,
//     then calls Component.Update.
//   - Connect subscribes to the component's class-level subjects.
//   - Disconnect tears down every subscription the component holds.
//
// ObserverElement is NOT thread-safe. Drive it from a single goroutine; notify
// observables from other goroutines only if their callbacks hand work back
// to that goroutine.
type ObserverElement struct {
	component  Component
	owner      *UpdateOwner
	manager    *SubscriptionManager
	properties Properties
	values     map[string]any
	pending    PropertyChanges
	dirty      bool
	connected  bool
	// reconnecting is set after the first Disconnect, so the next Connect
	// restores the named subscriptions that Disconnect dropped.
	reconnecting bool
}

// NewObserverElement creates an element for component. Updates are scheduled
// on owner; with a nil owner they are only marked and must be performed by
// calling PerformUpdate.
func NewObserverElement(component Component, owner *UpdateOwner) *ObserverElement {
	element := &ObserverElement{
		component:  component,
		owner:      owner,
		properties: component.Properties(),
		values:     make(map[string]any),
	}
	element.manager = NewSubscriptionManager(element)
	if setter, ok := component.(interface{ setElement(*ObserverElement) }); ok {
		setter.setElement(element)
	}
	return element
}

// Component returns the hosted component.
func (e *ObserverElement) Component() Component {
	return e.component
}

// Subscriptions returns the element's subscription manager.
func (e *ObserverElement) Subscriptions() *SubscriptionManager {
	return e.manager
}

// IsConnected reports whether the element is between Connect and Disconnect.
func (e *ObserverElement) IsConnected() bool {
	return e.connected
}

// IsDirty reports whether an update has been requested but not performed.
func (e *ObserverElement) IsDirty() bool {
	return e.dirty
}

// Connect moves the element into the live state: class-level subjects are
// subscribed, the component's Connected hook runs and an update is requested.
// Connecting an already connected element is a no-op.
func (e *ObserverElement) Connect() {
	if e.connected {
		return
	}
	e.connected = true
	e.manager.ConnectClassSubscriptions()
	if e.reconnecting {
		e.resubscribeProperties()
	}
	if c, ok := e.component.(Connectable); ok {
		c.Connected()
	}
	e.dirty = false
	e.RequestUpdate()
}

// Disconnect tears down every named and unnamed subscription, runs the
// component's OnDisconnect cleanups and its Disconnected hook. Safe to call
// on an element that was never connected.
func (e *ObserverElement) Disconnect() {
	wasConnected := e.connected
	e.connected = false
	e.manager.DisconnectSubscriptions()
	if b, ok := e.component.(componentBase); ok {
		b.base().runDisposers()
	}
	if !wasConnected {
		return
	}
	e.reconnecting = true
	if c, ok := e.component.(Connectable); ok {
		c.Disconnected()
	}
}

// resubscribeProperties binds every observe-enabled property to its current
// value again.
func (e *ObserverElement) resubscribeProperties() {
	for name, options := range e.properties {
		if !options.Observe {
			continue
		}
		if value, ok := e.values[name]; ok {
			e.manager.SubscribeToProperty(name, value)
		}
	}
}

// SetProperty assigns value to the declared property name. If the value is
// a different reference than before, the change is recorded for the next
// update cycle and an update is requested. Assigning the same reference does
// nothing. Undeclared properties are stored but never trigger an update.
func (e *ObserverElement) SetProperty(name string, value any) {
	previous := e.values[name]
	e.values[name] = value

	if _, declared := e.properties[name]; !declared {
		return
	}
	if sameValue(previous, value) {
		return
	}
	if !e.pending.Has(name) {
		e.pending = append(e.pending, PropertyChange{Name: name, Previous: previous})
	}
	e.RequestUpdate()
}

// Property returns the current value of name, or nil if it was never set.
func (e *ObserverElement) Property(name string) any {
	return e.values[name]
}

// PropertyOf returns the value of name as a T, or T's zero value if the
// property is unset or holds another type.
func PropertyOf[T any](e *ObserverElement, name string) T {
	value, _ := e.values[name].(T)
	return value
}

// RequestUpdate marks the element dirty and schedules it on the owner.
// Repeated requests before the update runs are coalesced.
func (e *ObserverElement) RequestUpdate() {
	if e.dirty {
		return
	}
	e.dirty = true
	if e.owner != nil {
		e.owner.ScheduleUpdate(e)
	}
}

// PerformUpdate runs one update cycle if the element is dirty and connected:
// recorded property changes are reconciled with the subscription manager in
// the order they happened, then the component's Update is called with them.
func (e *ObserverElement) PerformUpdate() {
	if !e.dirty || !e.connected {
		return
	}
	e.dirty = false
	changes := e.pending
	e.pending = nil

	for _, change := range changes {
		e.manager.ManagePropertyChange(change.Name, change.Previous)
	}
	e.safeUpdate(changes)
}

// safeUpdate calls Component.Update with panic recovery. A panic is reported
// to the global error handler and the element stays usable.
func (e *ObserverElement) safeUpdate(changes PropertyChanges) {
	defer func() {
		if r := recover(); r != nil {
			updateErr := &errors.UpdateError{
				Component: reflect.TypeOf(e.component).String(),
				Recovered: r,
				Timestamp: time.Now(),
			}
			if DebugMode {
				updateErr.StackTrace = errors.CaptureStack()
			}
			errors.ReportUpdateError(updateErr)
		}
	}()
	e.component.Update(changes)
}

// ClassSubjects implements Host.
func (e *ObserverElement) ClassSubjects() []Subject {
	if c, ok := e.component.(ClassObserver); ok {
		return c.Observing()
	}
	return nil
}

// PropertyOptions implements Host.
func (e *ObserverElement) PropertyOptions(name string) (PropertyOptions, bool) {
	options, ok := e.properties[name]
	return options, ok
}

// PropertyValue implements Host.
func (e *ObserverElement) PropertyValue(name string) any {
	return e.values[name]
}

// ObserveUpdate implements Host by forwarding to the component's hook.
func (e *ObserverElement) ObserveUpdate(subject Subject, name string) {
	e.component.ObserveUpdate(subject, name)
}
