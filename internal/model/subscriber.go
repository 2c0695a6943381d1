package model

// Subscriber consumes alerts fanned out by the distributor. Deliver runs on
// the subscriber's own delivery goroutine, never on the ingestion path, so a
// slow implementation only hurts itself.
type Subscriber interface {
	// Name identifies the subscriber in logs and drop counters.
	Name() string

	// Deliver hands one alert to the subscriber. A non-nil error counts as a
	// delivery failure; repeated consecutive failures get the subscriber
	// unsubscribed.
	Deliver(alert *Alert) error
}
