// Package simulate crafts controlled attack traffic for testing the detector
// on authorized networks: SYN port scans, ICMP echo floods, and ping sweeps.
// The generated frames are just another producer into the same pipeline,
// either via a pcap file replay or direct injection on an interface.
package simulate

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// DefaultScanPorts are the ports probed when the caller does not choose any.
var DefaultScanPorts = []uint16{21, 22, 23, 25, 80, 443, 3389, 8080}

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
)

// PortScan builds one TCP SYN frame per destination port.
func PortScan(srcIP, dstIP net.IP, ports []uint16) ([][]byte, error) {
	if len(ports) == 0 {
		ports = DefaultScanPorts
	}
	frames := make([][]byte, 0, len(ports))
	for i, port := range ports {
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(40000 + i),
			DstPort: layers.TCPPort(port),
			Seq:     uint32(1000 + i),
			SYN:     true,
			Window:  14600,
		}
		frame, err := serialize(srcIP, dstIP, layers.IPProtocolTCP, tcp)
		if err != nil {
			return nil, fmt.Errorf("failed to build SYN frame for port %d: %w", port, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// ICMPFlood builds count ICMP echo request frames from one source.
func ICMPFlood(srcIP, dstIP net.IP, count int) ([][]byte, error) {
	frames := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		icmp := &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
			Id:       1,
			Seq:      uint16(i + 1),
		}
		frame, err := serialize(srcIP, dstIP, layers.IPProtocolICMPv4, icmp)
		if err != nil {
			return nil, fmt.Errorf("failed to build ICMP frame %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// PingSweep builds one ICMP echo request per host address in the network.
func PingSweep(srcIP net.IP, network *net.IPNet) ([][]byte, error) {
	var frames [][]byte
	seq := uint16(1)
	for ip := network.IP.Mask(network.Mask); network.Contains(ip); ip = nextIP(ip) {
		icmp := &layers.ICMPv4{
			TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
			Id:       2,
			Seq:      seq,
		}
		seq++
		frame, err := serialize(srcIP, ip, layers.IPProtocolICMPv4, icmp)
		if err != nil {
			return nil, fmt.Errorf("failed to build sweep frame for %s: %w", ip, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// WritePcap writes the frames to a pcap file, spacing timestamps by interval.
func WritePcap(path string, frames [][]byte, start time.Time, interval time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return fmt.Errorf("failed to write pcap header: %w", err)
	}

	ts := start
	for _, frame := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := w.WritePacket(ci, frame); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
		ts = ts.Add(interval)
	}
	return nil
}

func serialize(srcIP, dstIP net.IP, proto layers.IPProtocol, transport gopacket.SerializableLayer) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		SrcIP:    srcIP.To4(),
		DstIP:    dstIP.To4(),
		Protocol: proto,
	}
	if tcp, ok := transport.(*layers.TCP); ok {
		tcp.SetNetworkLayerForChecksum(ip)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, transport); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
