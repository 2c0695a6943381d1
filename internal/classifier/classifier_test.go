package classifier

import (
	"net"
	"testing"
	"time"

	"NetSentra/internal/model"
	"NetSentra/internal/tracker"
)

func record(proto model.Protocol, src string, dstPort uint16, ts time.Time) *model.PacketRecord {
	return &model.PacketRecord{
		Timestamp: ts,
		SrcIP:     net.ParseIP(src),
		DstIP:     net.ParseIP("192.168.1.10"),
		Protocol:  proto,
		DstPort:   dstPort,
		Length:    60,
	}
}

func TestClassify_PortScanThreshold(t *testing.T) {
	c := New(10, 100)
	rec := record(model.ProtocolTCP, "10.0.0.5", 8083, time.Now())

	// At the threshold: benign.
	if cls := c.Classify(rec, tracker.Summary{DistinctPorts: 10}); cls != nil {
		t.Errorf("Expected no classification at exactly the threshold, got %+v", cls)
	}

	// Past the threshold: port scan, severity high.
	cls := c.Classify(rec, tracker.Summary{DistinctPorts: 11})
	if cls == nil {
		t.Fatal("Expected a classification past the threshold")
	}
	if cls.Threat != model.ThreatPortScan {
		t.Errorf("Expected threat %s, got %s", model.ThreatPortScan, cls.Threat)
	}
	if cls.Severity != model.SeverityHigh {
		t.Errorf("Expected severity %s, got %s", model.SeverityHigh, cls.Severity)
	}
}

func TestClassify_PortScanAppliesToUDP(t *testing.T) {
	c := New(10, 100)
	rec := record(model.ProtocolUDP, "10.0.0.5", 53, time.Now())

	if cls := c.Classify(rec, tracker.Summary{DistinctPorts: 11}); cls == nil || cls.Threat != model.ThreatPortScan {
		t.Errorf("Expected UDP fan-out to classify as a port scan, got %+v", cls)
	}
}

func TestClassify_ICMPFloodThreshold(t *testing.T) {
	c := New(10, 100)
	rec := record(model.ProtocolICMP, "10.0.0.9", 0, time.Now())

	if cls := c.Classify(rec, tracker.Summary{ICMPCount: 100}); cls != nil {
		t.Errorf("Expected no classification at exactly the threshold, got %+v", cls)
	}

	cls := c.Classify(rec, tracker.Summary{ICMPCount: 101})
	if cls == nil {
		t.Fatal("Expected a classification past the threshold")
	}
	if cls.Threat != model.ThreatICMPFlood {
		t.Errorf("Expected threat %s, got %s", model.ThreatICMPFlood, cls.Threat)
	}
	if cls.Severity != model.SeverityMedium {
		t.Errorf("Expected severity %s, got %s", model.SeverityMedium, cls.Severity)
	}
}

func TestClassify_RulesAreKeyedByProtocol(t *testing.T) {
	c := New(10, 100)

	// An ICMP record never triggers the port rule, and vice versa.
	icmp := record(model.ProtocolICMP, "10.0.0.5", 0, time.Now())
	if cls := c.Classify(icmp, tracker.Summary{DistinctPorts: 50}); cls != nil {
		t.Errorf("ICMP record must not trigger the port scan rule, got %+v", cls)
	}
	tcp := record(model.ProtocolTCP, "10.0.0.5", 80, time.Now())
	if cls := c.Classify(tcp, tracker.Summary{ICMPCount: 500}); cls != nil {
		t.Errorf("TCP record must not trigger the ICMP flood rule, got %+v", cls)
	}
}

func TestClassify_SuppressedAfterFiring(t *testing.T) {
	c := New(10, 100)

	tcp := record(model.ProtocolTCP, "10.0.0.5", 80, time.Now())
	if cls := c.Classify(tcp, tracker.Summary{DistinctPorts: 20, FiredPortScan: true}); cls != nil {
		t.Errorf("Expected suppression after the window fired, got %+v", cls)
	}

	icmp := record(model.ProtocolICMP, "10.0.0.9", 0, time.Now())
	if cls := c.Classify(icmp, tracker.Summary{ICMPCount: 500, FiredICMPFlood: true}); cls != nil {
		t.Errorf("Expected suppression after the window fired, got %+v", cls)
	}
}

func TestClassify_ARPAndOtherAreBenign(t *testing.T) {
	c := New(10, 100)

	arp := &model.PacketRecord{Timestamp: time.Now(), Protocol: model.ProtocolARP}
	if cls := c.Classify(arp, tracker.Summary{}); cls != nil {
		t.Errorf("Expected ARP to be benign, got %+v", cls)
	}
	other := &model.PacketRecord{Timestamp: time.Now(), Protocol: model.ProtocolOther}
	if cls := c.Classify(other, tracker.Summary{DistinctPorts: 50, ICMPCount: 500}); cls != nil {
		t.Errorf("Expected OTHER to be benign, got %+v", cls)
	}
}
