package capture

import (
	"errors"
	"fmt"
	"io"

	"NetSentra/internal/model"

	"github.com/google/gopacket/pcap"
)

// FileSource replays packets from a pcap file through the same decode path
// as live capture. Next returns ErrClosed once the file is exhausted.
type FileSource struct {
	handle *pcap.Handle
	path   string
}

// NewFileSource opens a pcap file for offline replay.
func NewFileSource(path string) (*FileSource, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	return &FileSource{handle: handle, path: path}, nil
}

// Name returns the replayed file path.
func (s *FileSource) Name() string {
	return "pcap:" + s.path
}

// Next reads and decodes the next packet from the file.
func (s *FileSource) Next() (*model.PacketRecord, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, model.ErrClosed
		}
		return nil, fmt.Errorf("%w: %v", model.ErrMalformed, err)
	}
	return Parse(data, ci.Timestamp)
}

// Close closes the pcap handle.
func (s *FileSource) Close() error {
	s.handle.Close()
	return nil
}
