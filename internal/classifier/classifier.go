// Package classifier holds the pure decision logic of the detector: given a
// packet record and its source's window summary, decide whether the packet is
// part of suspicious activity. Rules are keyed by protocol and evaluated in
// order, first match wins. Severity is a static mapping per threat type.
package classifier

import (
	"NetSentra/internal/model"
	"NetSentra/internal/tracker"
)

// Classifier evaluates the threshold rules. It has no mutable state and is
// safe to share across workers.
type Classifier struct {
	portScanThreshold  int
	icmpFloodThreshold int
}

// New creates a Classifier with the given thresholds.
func New(portScanThreshold, icmpFloodThreshold int) *Classifier {
	return &Classifier{
		portScanThreshold:  portScanThreshold,
		icmpFloodThreshold: icmpFloodThreshold,
	}
}

// Classify returns the verdict for one packet, or nil if the packet is
// benign. A window that has already fired a threat type is suppressed so
// each (source, threat) pair alerts at most once per window.
func (c *Classifier) Classify(rec *model.PacketRecord, s tracker.Summary) *model.Classification {
	switch rec.Protocol {
	case model.ProtocolTCP, model.ProtocolUDP:
		if !s.FiredPortScan && s.DistinctPorts > c.portScanThreshold {
			return &model.Classification{Threat: model.ThreatPortScan, Severity: model.SeverityHigh}
		}
	case model.ProtocolICMP:
		if !s.FiredICMPFlood && s.ICMPCount > uint64(c.icmpFloodThreshold) {
			return &model.Classification{Threat: model.ThreatICMPFlood, Severity: model.SeverityMedium}
		}
	}
	return nil
}
