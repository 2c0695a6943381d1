package simulate

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NetSentra/internal/capture"
	"NetSentra/internal/model"

	"github.com/google/gopacket/pcapgo"
)

func TestPortScan_FramesParseBack(t *testing.T) {
	src := net.ParseIP("10.0.0.5")
	dst := net.ParseIP("192.168.1.10")

	frames, err := PortScan(src, dst, nil)
	if err != nil {
		t.Fatalf("PortScan failed: %v", err)
	}
	if len(frames) != len(DefaultScanPorts) {
		t.Fatalf("Expected %d frames, got %d", len(DefaultScanPorts), len(frames))
	}

	seen := make(map[uint16]bool)
	for _, frame := range frames {
		rec, err := capture.Parse(frame, time.Now())
		if err != nil {
			t.Fatalf("Generated frame failed to parse: %v", err)
		}
		if rec.Protocol != model.ProtocolTCP {
			t.Fatalf("Expected a TCP frame, got %s", rec.Protocol)
		}
		if rec.Flags == nil || !rec.Flags.SYN || rec.Flags.ACK {
			t.Errorf("Expected a bare SYN, got %+v", rec.Flags)
		}
		if rec.SrcIP.String() != "10.0.0.5" {
			t.Errorf("Expected source 10.0.0.5, got %s", rec.SrcIP)
		}
		seen[rec.DstPort] = true
	}
	if len(seen) != len(DefaultScanPorts) {
		t.Errorf("Expected %d distinct destination ports, got %d", len(DefaultScanPorts), len(seen))
	}
}

func TestICMPFlood_FramesParseBack(t *testing.T) {
	frames, err := ICMPFlood(net.ParseIP("10.0.0.9"), net.ParseIP("192.168.1.10"), 25)
	if err != nil {
		t.Fatalf("ICMPFlood failed: %v", err)
	}
	if len(frames) != 25 {
		t.Fatalf("Expected 25 frames, got %d", len(frames))
	}

	for _, frame := range frames {
		rec, err := capture.Parse(frame, time.Now())
		if err != nil {
			t.Fatalf("Generated frame failed to parse: %v", err)
		}
		if rec.Protocol != model.ProtocolICMP {
			t.Fatalf("Expected an ICMP frame, got %s", rec.Protocol)
		}
		if rec.SrcIP.String() != "10.0.0.9" {
			t.Errorf("Expected source 10.0.0.9, got %s", rec.SrcIP)
		}
	}
}

func TestPingSweep_CoversNetwork(t *testing.T) {
	_, network, err := net.ParseCIDR("192.168.1.0/29")
	if err != nil {
		t.Fatal(err)
	}

	frames, err := PingSweep(net.ParseIP("10.0.0.5"), network)
	if err != nil {
		t.Fatalf("PingSweep failed: %v", err)
	}
	// A /29 spans 8 addresses, network and broadcast included.
	if len(frames) != 8 {
		t.Fatalf("Expected 8 frames for a /29, got %d", len(frames))
	}

	targets := make(map[string]bool)
	for _, frame := range frames {
		rec, err := capture.Parse(frame, time.Now())
		if err != nil {
			t.Fatalf("Generated frame failed to parse: %v", err)
		}
		targets[rec.DstIP.String()] = true
	}
	if len(targets) != 8 {
		t.Errorf("Expected 8 distinct targets, got %d", len(targets))
	}
	if !targets["192.168.1.0"] || !targets["192.168.1.7"] {
		t.Errorf("Expected the sweep to span the whole block, got %v", targets)
	}
}

func TestWritePcap_RoundTrip(t *testing.T) {
	frames, err := PortScan(net.ParseIP("10.0.0.5"), net.ParseIP("192.168.1.10"), []uint16{22, 80, 443})
	if err != nil {
		t.Fatalf("PortScan failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scan.pcap")
	start := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	if err := WritePcap(path, frames, start, 100*time.Millisecond); err != nil {
		t.Fatalf("WritePcap failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r, err := pcapgo.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to read pcap header: %v", err)
	}

	var count int
	var last time.Time
	for {
		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read packet %d: %v", count, err)
		}
		if len(data) != len(frames[count]) {
			t.Errorf("Packet %d: expected %d bytes, got %d", count, len(frames[count]), len(data))
		}
		last = ci.Timestamp
		count++
	}
	if count != 3 {
		t.Errorf("Expected 3 packets, got %d", count)
	}
	if want := start.Add(200 * time.Millisecond); !last.Equal(want) {
		t.Errorf("Expected last timestamp %v, got %v", want, last)
	}
}
