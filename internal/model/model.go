package model

import (
	"net"
	"time"
)

// Protocol identifies the highest protocol layer we classify on.
type Protocol string

const (
	ProtocolTCP   Protocol = "TCP"
	ProtocolUDP   Protocol = "UDP"
	ProtocolICMP  Protocol = "ICMP"
	ProtocolARP   Protocol = "ARP"
	ProtocolOther Protocol = "OTHER"
)

// TCPFlags holds the transport-layer flags of a TCP segment.
type TCPFlags struct {
	SYN bool `json:"syn"`
	ACK bool `json:"ack"`
	FIN bool `json:"fin"`
	RST bool `json:"rst"`
	PSH bool `json:"psh"`
	URG bool `json:"urg"`
}

// PacketRecord holds the metadata extracted from a single captured packet.
// Which optional fields are populated depends on Protocol: SrcIP/DstIP are
// nil for non-IP frames, ports are set only for TCP/UDP, Flags only for TCP.
// A record is never mutated after creation.
type PacketRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SrcIP     net.IP    `json:"src_ip,omitempty"`
	DstIP     net.IP    `json:"dst_ip,omitempty"`
	Protocol  Protocol  `json:"protocol"`
	SrcPort   uint16    `json:"src_port,omitempty"`
	DstPort   uint16    `json:"dst_port,omitempty"`
	Flags     *TCPFlags `json:"flags,omitempty"`
	Length    int       `json:"length"`
}

// TrafficStatistics is the pipeline-side view of the aggregate statistics.
type TrafficStatistics struct {
	TotalPackets     uint64              `json:"total_packets"`
	MalformedRecords uint64              `json:"malformed_records"`
	ByProtocol       map[Protocol]uint64 `json:"protocol_distribution"`
}
