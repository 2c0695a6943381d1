package pipeline

import (
	"errors"
	"net"
	"testing"
	"time"

	"NetSentra/internal/alert"
	"NetSentra/internal/classifier"
	"NetSentra/internal/distributor"
	"NetSentra/internal/model"
	"NetSentra/internal/tracker"
)

// fakeSource feeds scripted results to the pipeline with the same timeout
// contract as a real capture handle.
type fakeSource struct {
	feed chan feedItem
	done chan struct{}
}

type feedItem struct {
	rec *model.PacketRecord
	err error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		feed: make(chan feedItem, 1024),
		done: make(chan struct{}),
	}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Next() (*model.PacketRecord, error) {
	select {
	case item := <-f.feed:
		return item.rec, item.err
	case <-f.done:
		return nil, model.ErrClosed
	case <-time.After(20 * time.Millisecond):
		return nil, model.ErrTimeout
	}
}

func (f *fakeSource) Close() error {
	close(f.done)
	return nil
}

func tcpSYN(src string, dstPort uint16, ts time.Time) *model.PacketRecord {
	return &model.PacketRecord{
		Timestamp: ts,
		SrcIP:     net.ParseIP(src),
		DstIP:     net.ParseIP("192.168.1.10"),
		Protocol:  model.ProtocolTCP,
		SrcPort:   40000,
		DstPort:   dstPort,
		Flags:     &model.TCPFlags{SYN: true},
		Length:    60,
	}
}

func newTestPipeline(src model.Source) (*Pipeline, *alert.Store, *distributor.Distributor) {
	trk := tracker.New(60*time.Second, 30*time.Second, 8)
	cls := classifier.New(10, 100)
	store := alert.NewStore(100)
	dist := distributor.New(16, 5)
	return New(trk, cls, store, dist, []model.Source{src}), store, dist
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPipeline_PortScanScenario(t *testing.T) {
	src := newFakeSource()
	p, store, dist := newTestPipeline(src)
	defer dist.Close()

	// Source 10.0.0.5 hits 11 distinct ports within 5 seconds, threshold 10.
	base := time.Now()
	ports := []uint16{21, 22, 23, 25, 80, 443, 3389, 8080, 8081, 8082, 8083}
	for i, port := range ports {
		src.feed <- feedItem{rec: tcpSYN("10.0.0.5", port, base.Add(time.Duration(i)*400*time.Millisecond))}
	}
	// More packets past the threshold within the same window.
	src.feed <- feedItem{rec: tcpSYN("10.0.0.5", 8083, base.Add(5 * time.Second))}
	src.feed <- feedItem{rec: tcpSYN("10.0.0.5", 8084, base.Add(6 * time.Second))}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	waitFor(t, "all packets to be processed", func() bool { return p.Statistics().TotalPackets == 13 })

	// Exactly one alert for the window, with all 11 scanned ports as evidence.
	alerts := store.Recent(-1)
	if len(alerts) != 1 {
		t.Fatalf("Expected exactly 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Threat != model.ThreatPortScan {
		t.Errorf("Expected threat %s, got %s", model.ThreatPortScan, a.Threat)
	}
	if a.Severity != model.SeverityHigh {
		t.Errorf("Expected severity %s, got %s", model.SeverityHigh, a.Severity)
	}
	if a.SrcIP != "10.0.0.5" {
		t.Errorf("Expected source 10.0.0.5, got %s", a.SrcIP)
	}
	if len(a.Evidence.ScannedPorts) != 11 {
		t.Errorf("Expected evidence with 11 ports, got %v", a.Evidence.ScannedPorts)
	}
}

func TestPipeline_ICMPFloodScenario(t *testing.T) {
	src := newFakeSource()
	p, store, dist := newTestPipeline(src)
	defer dist.Close()

	// Source 10.0.0.9 sends 101 echo requests within the window, threshold 100.
	base := time.Now()
	for i := 0; i < 101; i++ {
		src.feed <- feedItem{rec: &model.PacketRecord{
			Timestamp: base.Add(time.Duration(i) * 100 * time.Millisecond),
			SrcIP:     net.ParseIP("10.0.0.9"),
			DstIP:     net.ParseIP("192.168.1.10"),
			Protocol:  model.ProtocolICMP,
			Length:    60,
		}}
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	waitFor(t, "all packets to be processed", func() bool { return p.Statistics().TotalPackets == 101 })

	alerts := store.Recent(-1)
	if len(alerts) != 1 {
		t.Fatalf("Expected exactly 1 alert, got %d", len(alerts))
	}
	if alerts[0].Threat != model.ThreatICMPFlood {
		t.Errorf("Expected threat %s, got %s", model.ThreatICMPFlood, alerts[0].Threat)
	}
	if alerts[0].Severity != model.SeverityMedium {
		t.Errorf("Expected severity %s, got %s", model.SeverityMedium, alerts[0].Severity)
	}
	if alerts[0].Evidence.PacketCount != 101 {
		t.Errorf("Expected evidence count 101, got %d", alerts[0].Evidence.PacketCount)
	}
}

func TestPipeline_WindowIsolation(t *testing.T) {
	src := newFakeSource()
	p, store, dist := newTestPipeline(src)
	defer dist.Close()

	// 9 ports in each of two non-overlapping windows: never over threshold.
	base := time.Now()
	for i := 0; i < 9; i++ {
		src.feed <- feedItem{rec: tcpSYN("10.0.0.7", uint16(1000+i), base.Add(time.Duration(i)*time.Second))}
	}
	for i := 0; i < 9; i++ {
		src.feed <- feedItem{rec: tcpSYN("10.0.0.7", uint16(2000+i), base.Add(70*time.Second+time.Duration(i)*time.Second))}
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	waitFor(t, "all packets to be processed", func() bool { return p.Statistics().TotalPackets == 18 })

	if alerts := store.Recent(-1); len(alerts) != 0 {
		t.Errorf("Expected no alerts across isolated windows, got %d", len(alerts))
	}
}

func TestPipeline_MalformedRecordsAreCountedNotFatal(t *testing.T) {
	src := newFakeSource()
	p, store, dist := newTestPipeline(src)
	defer dist.Close()

	src.feed <- feedItem{rec: tcpSYN("10.0.0.1", 22, time.Now())}
	src.feed <- feedItem{err: model.ErrMalformed}
	src.feed <- feedItem{err: model.ErrMalformed}
	src.feed <- feedItem{rec: tcpSYN("10.0.0.1", 80, time.Now())}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	waitFor(t, "the stream to drain", func() bool {
		stats := p.Statistics()
		return stats.TotalPackets == 2 && stats.MalformedRecords == 2
	})

	if got := p.State(); got != StateRunning {
		t.Errorf("Expected pipeline to keep running past malformed records, got %s", got)
	}
	if alerts := store.Recent(-1); len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %d", len(alerts))
	}
}

func TestPipeline_StopIsIdempotentAndBounded(t *testing.T) {
	src := newFakeSource()
	p, _, dist := newTestPipeline(src)
	defer dist.Close()

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "pipeline to run", func() bool { return p.State() == StateRunning })

	// Stop with the source idle: must return within the capture timeout
	// bound, not hang on a blocked read.
	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- p.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Stop did not return within the capture timeout bound")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Stop took %s", elapsed)
	}
	if got := p.State(); got != StateStopped {
		t.Errorf("Expected state %s, got %s", StateStopped, got)
	}

	// Second stop is a no-op.
	if err := p.Stop(); err != nil {
		t.Errorf("Repeated Stop must be a no-op, got %v", err)
	}
}

func TestPipeline_RestartAfterStop(t *testing.T) {
	src := newFakeSource()
	p, _, dist := newTestPipeline(src)
	defer dist.Close()

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := p.Start(); err == nil {
		t.Error("Expected Start on a running pipeline to fail")
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	defer p.Stop()

	src.feed <- feedItem{rec: tcpSYN("10.0.0.1", 22, time.Now())}
	waitFor(t, "the restarted pipeline to process", func() bool { return p.Statistics().TotalPackets == 1 })
}

func TestPipeline_RestartFromError(t *testing.T) {
	bad := newFakeSource()
	good := newFakeSource()
	trk := tracker.New(60*time.Second, 30*time.Second, 8)
	cls := classifier.New(10, 100)
	store := alert.NewStore(100)
	dist := distributor.New(16, 5)
	defer dist.Close()
	p := New(trk, cls, store, dist, []model.Source{bad, good})

	// 1. One source fails unrecoverably; the other keeps capturing.
	bad.feed <- feedItem{err: errors.New("capture device vanished")}
	good.feed <- feedItem{rec: tcpSYN("10.0.0.1", 22, time.Now())}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, "the failed source to surface", func() bool { return p.State() == StateError })
	waitFor(t, "the healthy source to drain", func() bool { return p.Statistics().TotalPackets == 1 })

	// 2. Restart straight from the error state. The worker surviving from the
	// failed run must be retired, not doubled.
	if err := p.Start(); err != nil {
		t.Fatalf("Restart from error failed: %v", err)
	}
	if got := p.State(); got != StateRunning {
		t.Fatalf("Expected state %s after restart, got %s", StateRunning, got)
	}

	good.feed <- feedItem{rec: tcpSYN("10.0.0.1", 80, time.Now())}
	waitFor(t, "the restarted pipeline to process", func() bool { return p.Statistics().TotalPackets == 2 })

	// 3. Stop must finish within the capture timeout bound, with no worker
	// left waiting on a stale stop channel.
	done := make(chan error, 1)
	go func() { done <- p.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung after a restart from the error state")
	}
	if got := p.State(); got != StateStopped {
		t.Errorf("Expected state %s, got %s", StateStopped, got)
	}
}

func TestPipeline_DrainedSourceEndsWorker(t *testing.T) {
	src := newFakeSource()
	p, _, dist := newTestPipeline(src)
	defer dist.Close()

	src.feed <- feedItem{rec: tcpSYN("10.0.0.1", 22, time.Now())}
	src.feed <- feedItem{err: model.ErrClosed}

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The worker exits on ErrClosed; Wait returns, Stop finalizes the state.
	waitDone := make(chan struct{})
	go func() { p.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not exit on a drained source")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := p.Statistics().TotalPackets; got != 1 {
		t.Errorf("Expected 1 processed packet, got %d", got)
	}
}
