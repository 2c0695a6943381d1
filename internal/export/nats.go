package export

import (
	"encoding/json"
	"fmt"
	"log"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/nats-io/nats.go"
)

// NATSPublisher is a distributor subscriber that republishes every alert to
// a NATS subject for downstream consumers.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and returns an alert publisher.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Alert export connected to NATS server at %s", cfg.URL)
	return &NATSPublisher{nc: nc, subject: cfg.AlertSubject}, nil
}

// Name identifies this subscriber in logs and drop counters.
func (p *NATSPublisher) Name() string {
	return "nats-export"
}

// Deliver publishes one alert as JSON to the alert subject.
func (p *NATSPublisher) Deliver(a *model.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
