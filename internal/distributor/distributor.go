package distributor

import (
	"log"
	"sync"
	"sync/atomic"

	"NetSentra/internal/metrics"
	"NetSentra/internal/model"

	"github.com/google/uuid"
)

// subscription pairs a subscriber with its bounded outbound queue and the
// delivery goroutine draining it.
type subscription struct {
	id      string
	sub     model.Subscriber
	ch      chan *model.Alert
	dropped atomic.Uint64
}

// Distributor fans new alerts out to live subscribers without ever blocking
// the ingestion path. Each subscriber gets a bounded queue; when the queue is
// full the newest alert is dropped for that subscriber only. A subscriber
// that fails delivery maxFailures times in a row is unsubscribed.
type Distributor struct {
	mu          sync.RWMutex
	subs        map[string]*subscription
	queueCap    int
	maxFailures int
	wg          sync.WaitGroup
	closed      bool
}

// New creates a Distributor. queueCap bounds each subscriber's queue.
func New(queueCap, maxFailures int) *Distributor {
	if queueCap <= 0 {
		queueCap = 256
	}
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &Distributor{
		subs:        make(map[string]*subscription),
		queueCap:    queueCap,
		maxFailures: maxFailures,
	}
}

// Subscribe registers a subscriber and starts its delivery goroutine. The
// returned handle is used to unsubscribe.
func (d *Distributor) Subscribe(sub model.Subscriber) string {
	s := &subscription{
		id:  uuid.NewString(),
		sub: sub,
		ch:  make(chan *model.Alert, d.queueCap),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ""
	}
	d.subs[s.id] = s
	d.mu.Unlock()

	d.wg.Add(1)
	go d.deliver(s)
	log.Printf("Distributor: subscriber %q registered (queue %d)", sub.Name(), d.queueCap)
	return s.id
}

// Unsubscribe removes a subscriber and stops its delivery goroutine once the
// queued alerts are drained. Unknown handles are a no-op.
func (d *Distributor) Unsubscribe(handle string) {
	d.mu.Lock()
	s, ok := d.subs[handle]
	if ok {
		delete(d.subs, handle)
	}
	d.mu.Unlock()

	if ok {
		close(s.ch)
	}
}

// Publish offers the alert to every subscriber. The send is non-blocking;
// a full queue drops the alert for that subscriber and increments its drop
// counter, and ingestion always proceeds.
func (d *Distributor) Publish(a *model.Alert) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, s := range d.subs {
		select {
		case s.ch <- a:
		default:
			s.dropped.Add(1)
			metrics.SubscriberDropped.WithLabelValues(s.sub.Name()).Inc()
		}
	}
}

// Dropped returns how many alerts were dropped for the given subscriber.
func (d *Distributor) Dropped(handle string) uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if s, ok := d.subs[handle]; ok {
		return s.dropped.Load()
	}
	return 0
}

// Subscribers returns the names of the currently registered subscribers.
func (d *Distributor) Subscribers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.subs))
	for _, s := range d.subs {
		names = append(names, s.sub.Name())
	}
	return names
}

// Close unsubscribes everyone and waits for the delivery goroutines to drain.
func (d *Distributor) Close() {
	d.mu.Lock()
	d.closed = true
	subs := make([]*subscription, 0, len(d.subs))
	for id, s := range d.subs {
		subs = append(subs, s)
		delete(d.subs, id)
	}
	d.mu.Unlock()

	for _, s := range subs {
		close(s.ch)
	}
	d.wg.Wait()
}

// deliver drains one subscription's queue. Consecutive failures past the
// configured limit get the subscriber unsubscribed so a dead consumer cannot
// leak a goroutine and a queue forever.
func (d *Distributor) deliver(s *subscription) {
	defer d.wg.Done()

	failures := 0
	for a := range s.ch {
		if err := s.sub.Deliver(a); err != nil {
			failures++
			log.Printf("Distributor: delivery to %q failed (%d consecutive): %v", s.sub.Name(), failures, err)
			if failures >= d.maxFailures {
				log.Printf("Distributor: unsubscribing %q after %d consecutive failures", s.sub.Name(), failures)
				go d.Unsubscribe(s.id)
				// Drain silently until Unsubscribe closes the channel.
				for range s.ch {
				}
				return
			}
			continue
		}
		failures = 0
	}
}
