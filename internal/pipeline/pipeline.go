package pipeline

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"NetSentra/internal/alert"
	"NetSentra/internal/classifier"
	"NetSentra/internal/distributor"
	"NetSentra/internal/metrics"
	"NetSentra/internal/model"
	"NetSentra/internal/tracker"
)

// State is the lifecycle state of the ingestion pipeline.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrNotStartable is returned by Start when the pipeline is not in a state
// from which it can start.
var ErrNotStartable = errors.New("pipeline is not in a startable state")

// Pipeline orchestrates the per-record path: capture source → tracker →
// classifier → alert factory → store → distributor. It runs one worker
// goroutine per capture source; ordering within a source's stream is
// preserved, ordering across sources is not.
type Pipeline struct {
	tracker    *tracker.Tracker
	classifier *classifier.Classifier
	store      *alert.Store
	dist       *distributor.Distributor
	sources    []model.Source

	mu    sync.Mutex // guards state transitions and stop channel swap
	state atomic.Int32
	stop  chan struct{}
	wg    sync.WaitGroup

	packets atomic.Uint64
	errs    atomic.Uint64

	protoMu    sync.Mutex
	byProtocol map[model.Protocol]uint64
}

// New creates a Pipeline over the given capture sources.
func New(tr *tracker.Tracker, cl *classifier.Classifier, st *alert.Store, d *distributor.Distributor, sources []model.Source) *Pipeline {
	return &Pipeline{
		tracker:    tr,
		classifier: cl,
		store:      st,
		dist:       d,
		sources:    sources,
		byProtocol: make(map[model.Protocol]uint64),
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Start launches one worker per capture source. It is only legal from the
// Stopped or Error state; restarting after an error requires no other reset.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.State()
	if s != StateStopped && s != StateError {
		return fmt.Errorf("%w: %s", ErrNotStartable, s)
	}
	p.state.Store(int32(StateStarting))

	if s == StateError && p.stop != nil {
		// Only the failed worker exits on an unrecoverable error; workers on
		// healthy sources are still draining the previous stop channel. Retire
		// that generation before launching the next one.
		close(p.stop)
		p.wg.Wait()
	}

	p.stop = make(chan struct{})
	p.wg.Add(len(p.sources))
	for _, src := range p.sources {
		go p.worker(src, p.stop)
	}

	p.state.Store(int32(StateRunning))
	log.Printf("Pipeline started with %d capture worker(s).", len(p.sources))
	return nil
}

// Stop signals the workers to finish their in-flight record and exit, then
// waits for them. Calling Stop on a stopped pipeline is a no-op. The wait is
// bounded by the capture timeout of the sources.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.State() {
	case StateStopped:
		return nil
	case StateRunning, StateStarting, StateError:
		p.state.Store(int32(StateStopping))
		close(p.stop)
		p.wg.Wait()
		p.state.Store(int32(StateStopped))
		log.Println("Pipeline stopped.")
		return nil
	default:
		return nil
	}
}

// Wait blocks until all capture workers have exited. Useful for offline
// replay, where the workers end when the source is drained.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Statistics returns the pipeline-side traffic statistics.
func (p *Pipeline) Statistics() model.TrafficStatistics {
	p.protoMu.Lock()
	byProto := make(map[model.Protocol]uint64, len(p.byProtocol))
	for k, v := range p.byProtocol {
		byProto[k] = v
	}
	p.protoMu.Unlock()

	return model.TrafficStatistics{
		TotalPackets:     p.packets.Load(),
		MalformedRecords: p.errs.Load(),
		ByProtocol:       byProto,
	}
}

// worker pulls records from one capture source until stopped. Per-record
// failures are absorbed and counted; only an unrecoverable capture failure
// moves the pipeline to the Error state.
func (p *Pipeline) worker(src model.Source, stop <-chan struct{}) {
	defer p.wg.Done()
	defer func() {
		// A panic here is an invariant violation in the detection path. It is
		// fatal for this worker only; the host process keeps serving.
		if r := recover(); r != nil {
			log.Printf("Pipeline worker for %s failed: %v", src.Name(), r)
			p.state.Store(int32(StateError))
		}
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		rec, err := src.Next()
		switch {
		case err == nil:
			p.process(rec)
		case errors.Is(err, model.ErrTimeout):
			metrics.CaptureRetries.Inc()
		case errors.Is(err, model.ErrMalformed):
			p.errs.Add(1)
			metrics.RecordErrors.Inc()
		case errors.Is(err, model.ErrClosed):
			log.Printf("Capture source %s drained.", src.Name())
			return
		default:
			log.Printf("Unrecoverable capture failure on %s: %v", src.Name(), err)
			p.state.Store(int32(StateError))
			return
		}
	}
}

// process runs one record through tracker, classifier, factory, store, and
// distributor, synchronously. Every step is in-memory; only the distributor
// decouples slow consumers behind its bounded queues.
func (p *Pipeline) process(rec *model.PacketRecord) {
	p.packets.Add(1)
	metrics.PacketsTotal.WithLabelValues(string(rec.Protocol)).Inc()
	p.protoMu.Lock()
	p.byProtocol[rec.Protocol]++
	p.protoMu.Unlock()

	if rec.SrcIP == nil {
		// Non-IP frames carry no source to track; they only count in stats.
		return
	}

	summary := p.tracker.Observe(rec)
	cls := p.classifier.Classify(rec, summary)
	if cls == nil {
		return
	}

	ports, icmpCount, ok := p.tracker.MarkFired(rec.SrcIP.String(), cls.Threat, summary.WindowStart)
	if !ok {
		// The window rolled between Observe and MarkFired; the evidence is
		// gone, so the verdict no longer stands.
		return
	}

	ev := model.Evidence{WindowStart: summary.WindowStart}
	switch cls.Threat {
	case model.ThreatPortScan:
		ev.ScannedPorts = ports
	case model.ThreatICMPFlood:
		ev.PacketCount = icmpCount
	}

	a := alert.New(rec, cls, ev)
	p.store.Append(a)
	p.dist.Publish(a)
	log.Printf("ALERT [%s/%s] source %s -> %s (%s)", a.Threat, a.Severity, a.SrcIP, a.DstIP, a.Protocol)
}
