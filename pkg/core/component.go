package core

import "sync"

// PropertyOptions is the declared metadata for one component property.
type PropertyOptions struct {
	// Type is a free-form type hint ("object", "string", ...).
	Type string
	// Observe marks the property as subscription-managed: when it holds a
	// Subject, the component subscribes to it and updates when it notifies.
	Observe bool
}

// Properties maps property names to their declared options.
type Properties map[string]PropertyOptions

// PropertyChange records one property mutation within an update cycle.
type PropertyChange struct {
	Name     string
	Previous any
}

// PropertyChanges lists the properties changed since the previous update
// cycle, in the order they were first changed.
type PropertyChanges []PropertyChange

// Has reports whether name changed in this cycle.
func (c PropertyChanges) Has(name string) bool {
	_, ok := c.Previous(name)
	return ok
}

// Previous returns the value name held before this cycle.
func (c PropertyChanges) Previous(name string) (any, bool) {
	for _, change := range c {
		if change.Name == name {
			return change.Previous, true
		}
	}
	return nil, false
}

// Component is the host-side contract of an observing component. Embed
// ComponentBase to get defaults for all three methods.
type Component interface {
	// Properties declares the component's properties.
	Properties() Properties
	// Update is called once per update cycle with the changes since the
	// previous cycle. It is the re-render.
	Update(changes PropertyChanges)
	// ObserveUpdate is called when an observed subject notifies. name is the
	// property the subject is bound to, or empty for class-level subjects.
	ObserveUpdate(subject Subject, name string)
}

// ClassObserver is implemented by component types that observe a fixed list
// of subjects regardless of their property values.
//
//	var session = &Session{}
//
//	func (*header) Observing() []core.Subject { return []core.Subject{session} }
type ClassObserver interface {
	Observing() []Subject
}

// Connectable receives connect and disconnect notifications after the
// subscription bookkeeping for that transition has run.
type Connectable interface {
	Connected()
	Disconnected()
}

// componentBase is satisfied by any struct that embeds ComponentBase.
// Hooks accept componentBase so callers can pass c directly.
type componentBase interface {
	base() *ComponentBase
}

func (c *ComponentBase) base() *ComponentBase { return c }

// ComponentBase provides common functionality for components.
// Embed this struct in your component to eliminate boilerplate:
//
//	type todoList struct {
//	    core.ComponentBase
//	}
//
//	func (t *todoList) Properties() core.Properties {
//	    return core.Properties{"list": {Type: "object", Observe: true}}
//	}
//
//	func (t *todoList) Update(changes core.PropertyChanges) {
//	    list := core.PropertyOf[*TodoList](t.Element(), "list")
//	    ...
//	}
type ComponentBase struct {
	element    *ObserverElement
	disposers  []func()
	generation int // bumped on every disconnect so stale unregisters are ignored
	mu         sync.Mutex
}

// setElement stores the hosting element. Called by NewObserverElement.
func (c *ComponentBase) setElement(element *ObserverElement) {
	c.element = element
}

// Element returns the element hosting this component, or nil if the
// component is not hosted.
func (c *ComponentBase) Element() *ObserverElement {
	return c.element
}

// Properties declares no properties.
func (c *ComponentBase) Properties() Properties { return nil }

// Update is a no-op default implementation.
func (c *ComponentBase) Update(changes PropertyChanges) {}

// ObserveUpdate requests an update. Components that override it should call
// c.RequestUpdate() unless they deliberately suppress the update.
func (c *ComponentBase) ObserveUpdate(subject Subject, name string) {
	c.RequestUpdate()
}

// RequestUpdate schedules an update cycle. Safe to call on an unhosted
// component (becomes a no-op).
func (c *ComponentBase) RequestUpdate() {
	if c.element != nil {
		c.element.RequestUpdate()
	}
}

// OnDisconnect registers a cleanup function to run on the next disconnect.
// Returns an unregister function.
func (c *ComponentBase) OnDisconnect(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	index := len(c.disposers)
	generation := c.generation
	c.disposers = append(c.disposers, cleanup)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if generation == c.generation && index < len(c.disposers) {
			c.disposers[index] = nil
		}
	}
}

// runDisposers executes registered cleanups in reverse order and forgets them.
func (c *ComponentBase) runDisposers() {
	c.mu.Lock()
	disposers := c.disposers
	c.disposers = nil
	c.generation++
	c.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}
