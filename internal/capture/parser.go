package capture

import (
	"fmt"
	"time"

	"NetSentra/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Parse decodes a raw Ethernet frame into a PacketRecord. Frames that carry
// no classifiable protocol still produce a record (Protocol OTHER) so they
// count toward the traffic statistics; only undecodable data is an error.
func Parse(data []byte, ts time.Time) (*model.PacketRecord, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil && packet.NetworkLayer() == nil && packet.Layer(layers.LayerTypeARP) == nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformed, errLayer.Error())
	}

	rec := &model.PacketRecord{
		Timestamp: ts,
		Protocol:  model.ProtocolOther,
		Length:    len(data),
	}

	if l := packet.Layer(layers.LayerTypeARP); l != nil {
		rec.Protocol = model.ProtocolARP
		return rec, nil
	}

	switch l := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		rec.SrcIP = l.SrcIP
		rec.DstIP = l.DstIP
	case *layers.IPv6:
		rec.SrcIP = l.SrcIP
		rec.DstIP = l.DstIP
	default:
		// Non-IP, non-ARP frame: keep Protocol OTHER with no addresses.
		return rec, nil
	}

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		rec.Protocol = model.ProtocolTCP
		rec.SrcPort = uint16(tcp.SrcPort)
		rec.DstPort = uint16(tcp.DstPort)
		rec.Flags = &model.TCPFlags{
			SYN: tcp.SYN,
			ACK: tcp.ACK,
			FIN: tcp.FIN,
			RST: tcp.RST,
			PSH: tcp.PSH,
			URG: tcp.URG,
		}
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		rec.Protocol = model.ProtocolUDP
		rec.SrcPort = uint16(udp.SrcPort)
		rec.DstPort = uint16(udp.DstPort)
	} else if packet.Layer(layers.LayerTypeICMPv4) != nil || packet.Layer(layers.LayerTypeICMPv6) != nil {
		rec.Protocol = model.ProtocolICMP
	}

	return rec, nil
}
