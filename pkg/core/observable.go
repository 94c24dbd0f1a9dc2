package core

import (
	"slices"
	"sync"

	"github.com/go-drift/observe/pkg/errors"
)

// Observer is invoked with the notifying Observable as its sole argument.
type Observer func(subject *Observable)

// Subject is anything that can be subscribed to. *Observable satisfies it, and
// so does a pointer to any struct that embeds Observable.
type Subject interface {
	Subscribe(fn Observer) *Subscription
}

// Observable is a flat notify-on-demand fan-out. The zero value is ready to use;
// embed it in a struct to make that struct observable:
//
//	type Cart struct {
//	    core.Observable
//	    Items []string
//	}
//
//	cart.Items = append(cart.Items, "apple")
//	cart.Notify()
//
// Subscribe, Unsubscribe and Notify may be called from any goroutine. Callbacks
// run on the goroutine that calls Notify and never under the internal lock.
type Observable struct {
	mu            sync.Mutex
	subscriptions []*Subscription // nil until first Subscribe
}

// Subscribe registers fn to be called on every Notify until the returned
// Subscription is unsubscribed. Subscribing the same callback twice yields two
// independent subscriptions.
func (o *Observable) Subscribe(fn Observer) *Subscription {
	sub := &Subscription{observer: fn, subject: o}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subscriptions == nil {
		o.subscriptions = make([]*Subscription, 0, 1)
	}
	o.subscriptions = append(o.subscriptions, sub)
	return sub
}

// Notify calls every registered callback in subscription order.
//
// The subscriber list is snapshotted before the walk. Subscriptions removed
// during the walk are skipped if they have not fired yet; subscriptions added
// during the walk first fire on the next Notify. A panicking callback aborts
// the remaining fan-out; use NotifyIsolated to keep going.
func (o *Observable) Notify() {
	for _, sub := range o.snapshot() {
		if sub.active() {
			sub.observer(o)
		}
	}
}

// NotifyIsolated is like Notify, but a panicking callback is recovered and
// reported to the global error handler under op, and the remaining
// subscribers are still notified.
func (o *Observable) NotifyIsolated(op string) {
	for _, sub := range o.snapshot() {
		if sub.active() {
			o.invokeIsolated(op, sub)
		}
	}
}

func (o *Observable) invokeIsolated(op string, sub *Subscription) {
	defer errors.Recover(op)
	sub.observer(o)
}

// SubscriberCount returns the number of active subscriptions.
func (o *Observable) SubscriberCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subscriptions)
}

func (o *Observable) snapshot() []*Subscription {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.subscriptions) == 0 {
		return nil
	}
	return slices.Clone(o.subscriptions)
}

// removeSubscription forgets sub. Unknown subscriptions are ignored.
func (o *Observable) removeSubscription(sub *Subscription) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subscriptions == nil {
		return
	}
	if i := slices.Index(o.subscriptions, sub); i >= 0 {
		o.subscriptions = slices.Delete(o.subscriptions, i, i+1)
	}
}

func (o *Observable) contains(sub *Subscription) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Contains(o.subscriptions, sub)
}

// Subscription is the handle returned by Subscribe. The callback and subject
// are fixed at construction.
type Subscription struct {
	observer Observer
	subject  *Observable
}

// Subject returns the Observable this subscription is bound to.
func (s *Subscription) Subject() *Observable {
	return s.subject
}

// Unsubscribe detaches the subscription from its subject. Calling it more
// than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.subject == nil {
		return
	}
	s.subject.removeSubscription(s)
}

func (s *Subscription) active() bool {
	return s.subject.contains(s)
}
