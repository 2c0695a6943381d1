package probe

import (
	"encoding/json"
	"fmt"
	"log"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher sends packet records from a remote probe to the engine over a
// NATS subject. Records travel as JSON so any consumer can read the stream.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to NATS and returns a packet publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.PacketSubject}, nil
}

// Publish serializes one record and publishes it to the packet subject.
func (p *Publisher) Publish(rec *model.PacketRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal packet record: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
