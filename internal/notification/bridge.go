package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"NetSentra/internal/model"

	"github.com/gomarkdown/markdown"
)

// Bridge is a distributor subscriber that forwards alerts at or above a
// minimum severity to the configured notification channels, optionally
// enriched with an AI incident analysis. Analysis failures degrade to
// sending the notification without it.
type Bridge struct {
	notifiers   []model.Notifier
	analyzer    model.Analyzer
	minSeverity model.Severity
}

// NewBridge creates a notification bridge. analyzer may be nil.
func NewBridge(notifiers []model.Notifier, analyzer model.Analyzer, minSeverity model.Severity) *Bridge {
	return &Bridge{
		notifiers:   notifiers,
		analyzer:    analyzer,
		minSeverity: minSeverity,
	}
}

// Name identifies this subscriber in logs and drop counters.
func (b *Bridge) Name() string {
	return "notifications"
}

// Deliver formats and sends one alert. It returns an error only if every
// channel failed, so a single flaky channel does not get the bridge
// unsubscribed.
func (b *Bridge) Deliver(a *model.Alert) error {
	if a.Severity.Rank() < b.minSeverity.Rank() {
		return nil
	}

	subject := fmt.Sprintf("NetSentra Alert: %s from %s (%s)", a.Threat, a.SrcIP, strings.ToUpper(string(a.Severity)))
	body := b.formatBody(a)

	if analysis := b.analyze(a); analysis != "" {
		body += "<hr><h2>AI-Powered Analysis</h2>" + string(markdown.ToHTML([]byte(analysis), nil, nil))
	}

	var sent int
	for _, n := range b.notifiers {
		if err := n.Send(subject, body); err != nil {
			log.Printf("ERROR: Failed to send alert notification: %v", err)
			continue
		}
		sent++
	}
	if sent == 0 && len(b.notifiers) > 0 {
		return fmt.Errorf("all %d notification channels failed for alert %s", len(b.notifiers), a.ID)
	}
	return nil
}

func (b *Bridge) formatBody(a *model.Alert) string {
	var sb strings.Builder
	sb.WriteString("<h1>NetSentra Security Alert</h1><ul>")
	fmt.Fprintf(&sb, "<li><b>Threat:</b> <code>%s</code></li>", a.Threat)
	fmt.Fprintf(&sb, "<li><b>Severity:</b> <code>%s</code></li>", a.Severity)
	fmt.Fprintf(&sb, "<li><b>Source:</b> <code>%s</code></li>", a.SrcIP)
	fmt.Fprintf(&sb, "<li><b>Destination:</b> <code>%s</code></li>", a.DstIP)
	fmt.Fprintf(&sb, "<li><b>Protocol:</b> <code>%s</code></li>", a.Protocol)
	fmt.Fprintf(&sb, "<li><b>Time:</b> %s</li>", a.Timestamp.Format(time.RFC3339))
	switch a.Threat {
	case model.ThreatPortScan:
		fmt.Fprintf(&sb, "<li><b>Scanned ports:</b> %v</li>", a.Evidence.ScannedPorts)
	case model.ThreatICMPFlood:
		fmt.Fprintf(&sb, "<li><b>Packets in window:</b> %d</li>", a.Evidence.PacketCount)
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func (b *Bridge) analyze(a *model.Alert) string {
	if b.analyzer == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	input := fmt.Sprintf("Threat: %s, severity: %s, source: %s, destination: %s, protocol: %s, scanned ports: %v, packets in window: %d",
		a.Threat, a.Severity, a.SrcIP, a.DstIP, a.Protocol, a.Evidence.ScannedPorts, a.Evidence.PacketCount)

	analysis, err := b.analyzer.AnalyzeIncident(ctx, input)
	if err != nil {
		log.Printf("Failed to get AI analysis: %v", err)
		return ""
	}
	return analysis
}
