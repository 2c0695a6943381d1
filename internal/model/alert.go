package model

import "time"

// ThreatType is the closed set of threat categories the classifier emits.
type ThreatType string

const (
	ThreatPortScan  ThreatType = "port_scan"
	ThreatICMPFlood ThreatType = "icmp_flood"
	ThreatOther     ThreatType = "other"
)

// Severity ranks how serious an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an ordering for severity comparisons; unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AlertStatus is the acknowledgement state of an alert. Status is the only
// mutable alert field and is updated exclusively through the alert store.
type AlertStatus string

const (
	StatusNew          AlertStatus = "new"
	StatusAcknowledged AlertStatus = "acknowledged"
)

// Classification is the classifier's verdict for one packet record.
type Classification struct {
	Threat   ThreatType
	Severity Severity
}

// Evidence is the windowed state snapshot captured when an alert fires.
type Evidence struct {
	ScannedPorts []uint16  `json:"scanned_ports,omitempty"`
	PacketCount  uint64    `json:"packet_count,omitempty"`
	WindowStart  time.Time `json:"window_start"`
}

// Alert is an immutable security alert produced by the alert factory.
type Alert struct {
	ID        string      `json:"alert_id"`
	Timestamp time.Time   `json:"timestamp"`
	Threat    ThreatType  `json:"threat_type"`
	Severity  Severity    `json:"severity"`
	SrcIP     string      `json:"source_ip"`
	DstIP     string      `json:"dest_ip"`
	Protocol  Protocol    `json:"protocol"`
	Evidence  Evidence    `json:"evidence"`
	Status    AlertStatus `json:"status"`
}

// AlertStatistics is the store-side view of the aggregate statistics. The
// all-time counters keep counting after old alerts are evicted from the log.
type AlertStatistics struct {
	TotalAlerts   uint64                `json:"total_alerts"`
	RetainedCount int                   `json:"retained_count"`
	DroppedAlerts uint64                `json:"dropped_alerts"`
	BySeverity    map[Severity]uint64   `json:"alerts_by_severity"`
	ByThreat      map[ThreatType]uint64 `json:"alerts_by_threat"`
}
