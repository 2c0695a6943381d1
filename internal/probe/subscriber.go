package probe

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/nats-io/nats.go"
)

// SubscriberSource is a capture source fed by remote probes over NATS. The
// subscription handler buffers decoded records in a bounded channel; Next
// pulls from it with the same timeout contract as a live pcap source, so the
// pipeline treats remote and local capture identically.
type SubscriberSource struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	timeout time.Duration
	records chan *model.PacketRecord
	done    chan struct{}

	closeOnce sync.Once
}

// NewSubscriberSource connects to NATS and subscribes to the packet subject.
func NewSubscriberSource(cfg config.NATSConfig, captureTimeout string) (*SubscriberSource, error) {
	timeout, err := time.ParseDuration(captureTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid capture timeout: %w", err)
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s := &SubscriberSource{
		nc:      nc,
		subject: cfg.PacketSubject,
		timeout: timeout,
		records: make(chan *model.PacketRecord, 4096),
		done:    make(chan struct{}),
	}

	s.sub, err = nc.Subscribe(cfg.PacketSubject, s.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.PacketSubject, err)
	}
	log.Printf("Subscribed to '%s' for remote probe records.", cfg.PacketSubject)
	return s, nil
}

func (s *SubscriberSource) handle(msg *nats.Msg) {
	var rec model.PacketRecord
	if err := json.Unmarshal(msg.Data, &rec); err != nil {
		log.Printf("Error unmarshalling probe record: %v", err)
		return
	}
	select {
	case s.records <- &rec:
	default:
		// Buffer full: shed the newest record rather than block NATS delivery.
	}
}

// Name identifies the NATS subject this source reads.
func (s *SubscriberSource) Name() string {
	return "nats:" + s.subject
}

// Next returns the next buffered record, ErrTimeout after the capture
// timeout, or ErrClosed once Close has been called.
func (s *SubscriberSource) Next() (*model.PacketRecord, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case rec := <-s.records:
		return rec, nil
	case <-timer.C:
		return nil, model.ErrTimeout
	case <-s.done:
		return nil, model.ErrClosed
	}
}

// Close unsubscribes and closes the NATS connection. Closing an already
// closed source is a no-op.
func (s *SubscriberSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.sub != nil {
			s.sub.Unsubscribe()
		}
		if s.nc != nil {
			s.nc.Close()
		}
	})
	return nil
}
