package repository

// Subscription is a live query registration. Unsubscribe stops the listener
// and must be called when the owner goes away; it is safe to call more than
// once.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() {
	f()
}

// ErrorHandler receives listener failures. The listener stops after
// reporting.
type ErrorHandler func(err error)
