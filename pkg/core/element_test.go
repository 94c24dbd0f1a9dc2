package core

import (
	"testing"

	"github.com/go-drift/observe/pkg/errors"
)

// shared is a class-level subject observed by every testComponent.
var shared = &Observable{}

// testComponent records its update cycles.
type testComponent struct {
	ComponentBase
	updates      []PropertyChanges
	observed     []string
	connects     int
	disconnects  int
	suppress     bool
	updateFn     func(PropertyChanges)
	classSubject []Subject
}

func (c *testComponent) Properties() Properties {
	return Properties{
		"observed":      {Type: "object", Observe: true},
		"otherObserved": {Type: "object", Observe: true},
		"notObserved":   {Type: "object"},
	}
}

func (c *testComponent) Observing() []Subject {
	return c.classSubject
}

func (c *testComponent) Update(changes PropertyChanges) {
	c.updates = append(c.updates, changes)
	if c.updateFn != nil {
		c.updateFn(changes)
	}
}

func (c *testComponent) ObserveUpdate(subject Subject, name string) {
	c.observed = append(c.observed, name)
	if !c.suppress {
		c.RequestUpdate()
	}
}

func (c *testComponent) Connected()    { c.connects++ }
func (c *testComponent) Disconnected() { c.disconnects++ }

// mountComponent connects a fresh component and flushes its first update.
func mountComponent(t *testing.T, props map[string]any) (*testComponent, *ObserverElement, *UpdateOwner) {
	t.Helper()
	component := &testComponent{classSubject: []Subject{shared}}
	owner := NewUpdateOwner()
	element := NewObserverElement(component, owner)
	for name, value := range props {
		element.SetProperty(name, value)
	}
	element.Connect()
	owner.FlushUpdates()
	component.updates = nil
	t.Cleanup(element.Disconnect)
	return component, element, owner
}

func TestObserverElement_UpdatesWhenObservableNotifies(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, nil)

	element.SetProperty("observed", a)
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Fatalf("Expected 1 update after assignment, got %d", len(component.updates))
	}

	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 2 {
		t.Errorf("Expected 2 updates after notify, got %d", len(component.updates))
	}
}

func TestObserverElement_IgnoresNotObservedProperty(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, nil)

	element.SetProperty("notObserved", a)
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Fatalf("Expected 1 update after assignment, got %d", len(component.updates))
	}

	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Errorf("Expected no update from an unobserved property, got %d updates", len(component.updates))
	}
	if a.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", a.SubscriberCount())
	}
}

func TestObserverElement_ObservesClassSubjects(t *testing.T) {
	b := &Observable{}
	component := &testComponent{classSubject: []Subject{b}}
	owner := NewUpdateOwner()
	element := NewObserverElement(component, owner)

	element.Connect()
	owner.FlushUpdates()
	component.updates = nil
	if b.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber after connect, got %d", b.SubscriberCount())
	}

	b.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Errorf("Expected 1 update, got %d", len(component.updates))
	}
	if len(component.observed) != 1 || component.observed[0] != "" {
		t.Errorf("Expected one class-level observe with empty name, got %q", component.observed)
	}

	element.Disconnect()
	if b.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after disconnect, got %d", b.SubscriberCount())
	}

	b.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Errorf("Expected no update after disconnect, got %d", len(component.updates))
	}
}

func TestObserverElement_StopsObserving(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, map[string]any{"observed": a})

	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Fatalf("Expected 1 update, got %d", len(component.updates))
	}

	element.SetProperty("observed", nil)
	owner.FlushUpdates()
	if len(component.updates) != 2 {
		t.Fatalf("Expected 2 updates, got %d", len(component.updates))
	}

	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 2 {
		t.Errorf("Expected no update after unassigning, got %d", len(component.updates))
	}
}

func TestObserverElement_ObservesSameSubjectTwice(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, map[string]any{
		"observed":      a,
		"otherObserved": a,
	})

	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 1 {
		t.Fatalf("Expected 1 coalesced update, got %d", len(component.updates))
	}

	element.SetProperty("observed", nil)
	owner.FlushUpdates()
	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 3 {
		t.Fatalf("Expected 3 updates while otherObserved still binds a, got %d", len(component.updates))
	}

	element.SetProperty("otherObserved", nil)
	owner.FlushUpdates()
	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 4 {
		t.Errorf("Expected 4 updates, got %d", len(component.updates))
	}
}

func TestObserverElement_UnhooksWhenUnassigned(t *testing.T) {
	a := &Observable{}
	_, element, owner := mountComponent(t, map[string]any{"observed": a})
	if a.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", a.SubscriberCount())
	}

	element.SetProperty("observed", nil)
	owner.FlushUpdates()

	if a.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", a.SubscriberCount())
	}
}

func TestObserverElement_UnhooksWhenDisconnected(t *testing.T) {
	a, b := &Observable{}, &Observable{}
	component := &testComponent{classSubject: []Subject{b}}
	owner := NewUpdateOwner()
	element := NewObserverElement(component, owner)
	element.SetProperty("observed", a)
	element.Connect()
	owner.FlushUpdates()

	element.Disconnect()

	if a.SubscriberCount() != 0 || b.SubscriberCount() != 0 {
		t.Errorf("Expected all subscriptions removed, got a=%d b=%d", a.SubscriberCount(), b.SubscriberCount())
	}
	if component.disconnects != 1 {
		t.Errorf("Expected Disconnected hook once, got %d", component.disconnects)
	}
}

func TestObserverElement_SameAssignmentDoesNothing(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, map[string]any{"observed": a})
	sub := element.Subscriptions().NamedSubscription("observed")

	element.SetProperty("observed", a)
	owner.FlushUpdates()

	if len(component.updates) != 0 {
		t.Errorf("Expected no update for same assignment, got %d", len(component.updates))
	}
	if owner.NeedsWork() || element.IsDirty() {
		t.Error("same assignment should not request an update")
	}
	if element.Subscriptions().NamedSubscription("observed") != sub {
		t.Error("same assignment should not replace the subscription")
	}
	if a.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", a.SubscriberCount())
	}
}

func TestObserverElement_ReassignReplacesSubscription(t *testing.T) {
	a, b := &Observable{}, &Observable{}
	component, element, owner := mountComponent(t, map[string]any{"observed": a})

	element.SetProperty("observed", b)
	owner.FlushUpdates()

	if a.SubscriberCount() != 0 || b.SubscriberCount() != 1 {
		t.Fatalf("Expected a=0 b=1 subscribers, got a=%d b=%d", a.SubscriberCount(), b.SubscriberCount())
	}
	named, _ := element.Subscriptions().Len()
	if named != 1 {
		t.Errorf("Expected 1 named subscription, got %d", named)
	}

	component.updates = nil
	a.Notify()
	owner.FlushUpdates()
	if len(component.updates) != 0 {
		t.Errorf("old subject should not trigger updates, got %d", len(component.updates))
	}
}

func TestObserverElement_ChangesRoundTripWithinCycle(t *testing.T) {
	a, b := &Observable{}, &Observable{}
	component, element, owner := mountComponent(t, map[string]any{"observed": a})
	sub := element.Subscriptions().NamedSubscription("observed")

	element.SetProperty("observed", b)
	element.SetProperty("observed", a)
	owner.FlushUpdates()

	if element.Subscriptions().NamedSubscription("observed") != sub {
		t.Error("value restored within one cycle should keep the original subscription")
	}
	if len(component.updates) != 1 {
		t.Fatalf("Expected 1 update, got %d", len(component.updates))
	}
	previous, ok := component.updates[0].Previous("observed")
	if !ok || previous != Subject(a) {
		t.Errorf("Expected first previous value to be kept, got %v", previous)
	}
}

func TestObserverElement_Scenario(t *testing.T) {
	a := &Observable{}
	component, element, owner := mountComponent(t, nil)

	element.SetProperty("observed", a)
	owner.FlushUpdates()
	if a.SubscriberCount() != 1 {
		t.Fatalf("Expected one subscription after assigning p, got %d", a.SubscriberCount())
	}

	a.Notify()
	if len(component.observed) != 1 {
		t.Fatalf("Expected update hook once, got %d", len(component.observed))
	}

	element.SetProperty("notObserved", a)
	owner.FlushUpdates()
	if a.SubscriberCount() != 1 {
		t.Fatalf("assigning q should not subscribe, got %d subscribers", a.SubscriberCount())
	}

	element.SetProperty("observed", nil)
	owner.FlushUpdates()
	if a.SubscriberCount() != 0 {
		t.Fatalf("Expected subscription removed, got %d", a.SubscriberCount())
	}

	a.Notify()
	if len(component.observed) != 1 {
		t.Errorf("Expected no further update hook calls, got %d", len(component.observed))
	}
}

func TestObserverElement_ClassScenario(t *testing.T) {
	before := shared.SubscriberCount()
	component, element, owner := mountComponent(t, nil)

	if shared.SubscriberCount() != before+1 {
		t.Fatalf("Expected exactly one new subscriber, got %d -> %d", before, shared.SubscriberCount())
	}

	shared.Notify()
	if len(component.observed) != 1 {
		t.Fatalf("Expected update hook once, got %d", len(component.observed))
	}
	owner.FlushUpdates()

	element.Disconnect()
	if shared.SubscriberCount() != before {
		t.Errorf("Expected subscriber removed, got %d", shared.SubscriberCount())
	}

	shared.Notify()
	if len(component.observed) != 1 {
		t.Errorf("Expected no update hook after disconnect, got %d", len(component.observed))
	}
}

func TestObserverElement_SuppressedObserveUpdate(t *testing.T) {
	a := &Observable{}
	component, _, owner := mountComponent(t, map[string]any{"observed": a})
	component.suppress = true

	a.Notify()
	owner.FlushUpdates()

	if len(component.observed) != 1 {
		t.Errorf("Expected hook to run, got %d", len(component.observed))
	}
	if len(component.updates) != 0 {
		t.Errorf("Expected suppressed update, got %d", len(component.updates))
	}
}

func TestObserverElement_DefaultObserveUpdateRequestsUpdate(t *testing.T) {
	type plain struct {
		ComponentBase
	}
	a := &Observable{}
	owner := NewUpdateOwner()
	element := NewObserverElement(&plain{}, owner)
	element.Connect()
	owner.FlushUpdates()

	element.Subscriptions().SubscribeToProperty("x", a)
	a.Notify()

	if !element.IsDirty() || !owner.NeedsWork() {
		t.Error("default ObserveUpdate should request an update")
	}
}

func TestObserverElement_NotifiesCoalesce(t *testing.T) {
	a := &Observable{}
	component, _, owner := mountComponent(t, map[string]any{"observed": a})

	a.Notify()
	a.Notify()
	a.Notify()
	owner.FlushUpdates()

	if len(component.observed) != 3 {
		t.Errorf("Expected 3 hook calls, got %d", len(component.observed))
	}
	if len(component.updates) != 1 {
		t.Errorf("Expected notifications to coalesce into 1 update, got %d", len(component.updates))
	}
}

func TestObserverElement_ReconnectRestoresSubscriptions(t *testing.T) {
	a, b := &Observable{}, &Observable{}
	component := &testComponent{classSubject: []Subject{b}}
	owner := NewUpdateOwner()
	element := NewObserverElement(component, owner)
	element.SetProperty("observed", a)
	element.Connect()
	owner.FlushUpdates()

	element.Disconnect()
	element.Connect()
	owner.FlushUpdates()
	defer element.Disconnect()

	if a.SubscriberCount() != 1 || b.SubscriberCount() != 1 {
		t.Errorf("Expected subscriptions restored, got a=%d b=%d", a.SubscriberCount(), b.SubscriberCount())
	}
	if component.connects != 2 {
		t.Errorf("Expected Connected hook twice, got %d", component.connects)
	}
}

func TestObserverElement_ConnectTwice(t *testing.T) {
	b := &Observable{}
	component := &testComponent{classSubject: []Subject{b}}
	element := NewObserverElement(component, NewUpdateOwner())

	element.Connect()
	element.Connect()
	defer element.Disconnect()

	if b.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", b.SubscriberCount())
	}
	if component.connects != 1 {
		t.Errorf("Expected Connected hook once, got %d", component.connects)
	}
}

func TestObserverElement_DisconnectWithoutConnect(t *testing.T) {
	component := &testComponent{}
	element := NewObserverElement(component, nil)

	element.Disconnect()

	if component.disconnects != 0 {
		t.Errorf("Disconnected hook should not run for a never-connected element, got %d", component.disconnects)
	}
}

func TestObserverElement_NoUpdatesWhileDisconnected(t *testing.T) {
	a := &Observable{}
	component := &testComponent{}
	owner := NewUpdateOwner()
	element := NewObserverElement(component, owner)

	element.SetProperty("observed", a)
	owner.FlushUpdates()

	if len(component.updates) != 0 {
		t.Errorf("Expected no update before connect, got %d", len(component.updates))
	}
	if a.SubscriberCount() != 0 {
		t.Errorf("Expected no subscription before connect, got %d", a.SubscriberCount())
	}

	element.Connect()
	owner.FlushUpdates()
	defer element.Disconnect()

	if len(component.updates) != 1 || !component.updates[0].Has("observed") {
		t.Fatalf("Expected first update to carry the pending change, got %v", component.updates)
	}
	if a.SubscriberCount() != 1 {
		t.Errorf("Expected subscription after connect, got %d", a.SubscriberCount())
	}
}

func TestObserverElement_NilOwner(t *testing.T) {
	a := &Observable{}
	component := &testComponent{}
	element := NewObserverElement(component, nil)
	element.Connect()
	defer element.Disconnect()

	element.SetProperty("observed", a)
	if !element.IsDirty() {
		t.Fatal("Expected element to be dirty")
	}

	element.PerformUpdate()
	if len(component.updates) != 1 {
		t.Errorf("Expected 1 update, got %d", len(component.updates))
	}
	if a.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", a.SubscriberCount())
	}
}

func TestObserverElement_UndeclaredProperty(t *testing.T) {
	component, element, owner := mountComponent(t, nil)

	element.SetProperty("extra", 42)
	owner.FlushUpdates()

	if len(component.updates) != 0 {
		t.Errorf("undeclared property should not request an update, got %d", len(component.updates))
	}
	if PropertyOf[int](element, "extra") != 42 {
		t.Error("undeclared property value should still be stored")
	}
}

func TestPropertyOf(t *testing.T) {
	a := &Observable{}
	_, element, _ := mountComponent(t, map[string]any{"observed": a})

	if PropertyOf[*Observable](element, "observed") != a {
		t.Error("Expected typed property value")
	}
	if PropertyOf[string](element, "observed") != "" {
		t.Error("Expected zero value for mismatched type")
	}
	if element.Property("missing") != nil {
		t.Error("Expected nil for unset property")
	}
}

type captureUpdateErrors struct {
	errors.LogHandler
	updateErrors []*errors.UpdateError
}

func (h *captureUpdateErrors) HandleUpdateError(err *errors.UpdateError) {
	h.updateErrors = append(h.updateErrors, err)
}

func TestObserverElement_UpdatePanicReportsError(t *testing.T) {
	handler := &captureUpdateErrors{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	a := &Observable{}
	component, element, owner := mountComponent(t, nil)
	component.updateFn = func(PropertyChanges) { panic("update failed") }

	element.SetProperty("observed", a)
	owner.FlushUpdates()

	if len(handler.updateErrors) != 1 {
		t.Fatalf("Expected 1 update error, got %d", len(handler.updateErrors))
	}
	err := handler.updateErrors[0]
	if err.Recovered != "update failed" {
		t.Errorf("Recovered = %v, want %q", err.Recovered, "update failed")
	}
	if err.Component != "*core.testComponent" {
		t.Errorf("Component = %q, want %q", err.Component, "*core.testComponent")
	}
	if err.StackTrace == "" {
		t.Error("Expected StackTrace in debug mode")
	}
	if a.SubscriberCount() != 1 {
		t.Error("subscriptions should be reconciled before Update runs")
	}

	component.updateFn = nil
	element.SetProperty("observed", nil)
	owner.FlushUpdates()
	if a.SubscriberCount() != 0 {
		t.Error("element should stay usable after a failed update")
	}
}

func TestObserverElement_UpdatePanicWithoutDebugMode(t *testing.T) {
	handler := &captureUpdateErrors{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)
	SetDebugMode(false)
	defer SetDebugMode(true)

	component, element, owner := mountComponent(t, nil)
	component.updateFn = func(PropertyChanges) { panic("update failed") }

	element.RequestUpdate()
	owner.FlushUpdates()

	if len(handler.updateErrors) != 1 {
		t.Fatalf("Expected 1 update error, got %d", len(handler.updateErrors))
	}
	if handler.updateErrors[0].StackTrace != "" {
		t.Error("Expected no stack trace outside debug mode")
	}
}
