package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/google/gopacket/pcap"
)

// LiveSource captures packets from a network interface. The pcap handle is
// opened with a read timeout so Next returns ErrTimeout periodically instead
// of blocking forever; that is what bounds the latency of a pipeline stop.
type LiveSource struct {
	handle *pcap.Handle
	iface  string
}

// NewLiveSource opens the configured interface for live capture.
func NewLiveSource(cfg config.CaptureConfig) (*LiveSource, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid capture timeout: %w", err)
	}

	handle, err := pcap.OpenLive(cfg.Interface, cfg.SnapshotLen, cfg.Promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", cfg.Interface, err)
	}
	return &LiveSource{handle: handle, iface: cfg.Interface}, nil
}

// Name returns the capture interface name.
func (s *LiveSource) Name() string {
	return "live:" + s.iface
}

// Next reads and decodes one packet from the interface.
func (s *LiveSource) Next() (*model.PacketRecord, error) {
	data, ci, err := s.handle.ReadPacketData()
	switch {
	case err == nil:
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return nil, model.ErrTimeout
	case errors.Is(err, io.EOF):
		return nil, model.ErrClosed
	default:
		return nil, fmt.Errorf("capture read failed: %w", err)
	}
	return Parse(data, ci.Timestamp)
}

// Close closes the pcap handle.
func (s *LiveSource) Close() error {
	s.handle.Close()
	return nil
}
