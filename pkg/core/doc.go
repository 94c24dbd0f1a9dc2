// Package core provides observable subjects and binds them to the lifecycle of
// stateful components.
//
// # Observables
//
// Observable is a flat notify-on-demand fan-out. Embed it in any struct, mutate
// the struct, then call Notify:
//
//	type TodoList struct {
//	    core.Observable
//	    Items []string
//	}
//
//	list := &TodoList{}
//	sub := list.Subscribe(func(*core.Observable) { fmt.Println(len(list.Items)) })
//	list.Items = append(list.Items, "milk")
//	list.Notify()
//	sub.Unsubscribe()
//
// There are no operators and no value transformation. Value[T] is the one
// convenience: an Observable that notifies when its value is set.
//
// # Components
//
// A component declares its properties, marks the ones that hold subjects with
// Observe, and embeds ComponentBase:
//
//	type todoView struct {
//	    core.ComponentBase
//	}
//
//	func (v *todoView) Properties() core.Properties {
//	    return core.Properties{
//	        "list":  {Type: "object", Observe: true},
//	        "title": {Type: "string"},
//	    }
//	}
//
//	func (v *todoView) Update(changes core.PropertyChanges) {
//	    list := core.PropertyOf[*TodoList](v.Element(), "list")
//	    ...
//	}
//
// ObserverElement hosts the component. Assigning a subject to an observed
// property subscribes to it; reassigning replaces the subscription, assigning
// nil drops it, and assigning the same subject again does nothing:
//
//	owner := core.NewUpdateOwner()
//	element := core.NewObserverElement(&todoView{}, owner)
//	element.Connect()
//	element.SetProperty("list", list)
//	owner.FlushUpdates()
//
//	list.Notify()       // requests an update
//	owner.FlushUpdates() // todoView.Update runs
//
// Disconnect drops every subscription the component holds.
//
// # Class-level subjects
//
// Component types implementing ClassObserver observe a fixed list of subjects
// for as long as they are connected. Observe adds an ad-hoc subject with the
// same lifetime.
//
// # Subscription management without ObserverElement
//
// SubscriptionManager only depends on the Host interface, so other component
// frameworks can drive it from their own lifecycle callbacks.
package core
