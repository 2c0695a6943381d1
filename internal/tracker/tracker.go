package tracker

import (
	"hash/fnv"
	"log"
	"sort"
	"sync"
	"time"

	"NetSentra/internal/metrics"
	"NetSentra/internal/model"
)

const defaultShardCount = 64

// sourceState is the windowed behavioral state of one source address. All
// counters reflect only activity since windowStart; the window is reset in
// place when it expires (fixed-window policy).
type sourceState struct {
	windowStart  time.Time
	lastSeen     time.Time
	scannedPorts map[uint16]struct{}
	icmpCount    uint64
	otherCounts  map[model.Protocol]uint64
	fired        map[model.ThreatType]bool
}

// shard holds a slice of the source map behind its own lock, so updates to
// unrelated sources never serialize on each other.
type shard struct {
	mu      sync.Mutex
	sources map[string]*sourceState
}

// Summary is the classifier-facing snapshot of one source's current window.
// It is a plain value so the classifier never touches shared state.
type Summary struct {
	DistinctPorts  int
	ICMPCount      uint64
	WindowStart    time.Time
	FiredPortScan  bool
	FiredICMPFlood bool
}

// Tracker maintains per-source sliding-window state across a sharded map.
// Observe and MarkFired are safe under concurrent calls; updates to the same
// source serialize on its shard lock.
type Tracker struct {
	window        time.Duration
	sweepInterval time.Duration
	shards        []*shard
	shardCount    uint32

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Tracker with the given fixed-window length. Sources idle for
// at least twice the window are removed by the background sweep.
func New(window, sweepInterval time.Duration, numShards uint32) *Tracker {
	if numShards == 0 || numShards >= 32768 {
		numShards = defaultShardCount
	}
	t := &Tracker{
		window:        window,
		sweepInterval: sweepInterval,
		shards:        make([]*shard, numShards),
		shardCount:    numShards,
		done:          make(chan struct{}),
	}
	for i := range t.shards {
		t.shards[i] = &shard{sources: make(map[string]*sourceState)}
	}
	return t
}

// Observe registers one packet's contribution to its source's state and
// returns the updated window summary for immediate classification.
func (t *Tracker) Observe(rec *model.PacketRecord) Summary {
	key := rec.SrcIP.String()
	sh := t.getShard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sources[key]
	if !ok || rec.Timestamp.Sub(st.windowStart) >= t.window {
		st = &sourceState{
			windowStart:  rec.Timestamp,
			scannedPorts: make(map[uint16]struct{}),
			otherCounts:  make(map[model.Protocol]uint64),
			fired:        make(map[model.ThreatType]bool),
		}
		sh.sources[key] = st
	}
	st.lastSeen = rec.Timestamp

	switch rec.Protocol {
	case model.ProtocolTCP, model.ProtocolUDP:
		st.scannedPorts[rec.DstPort] = struct{}{}
	case model.ProtocolICMP:
		st.icmpCount++
	default:
		st.otherCounts[rec.Protocol]++
	}

	return Summary{
		DistinctPorts:  len(st.scannedPorts),
		ICMPCount:      st.icmpCount,
		WindowStart:    st.windowStart,
		FiredPortScan:  st.fired[model.ThreatPortScan],
		FiredICMPFlood: st.fired[model.ThreatICMPFlood],
	}
}

// MarkFired records that an alert fired for the source's current window and
// returns the evidence snapshot (sorted scanned ports and ICMP count). It
// reports false if the window observed by the caller has already rolled
// over, in which case no alert should be emitted for it.
func (t *Tracker) MarkFired(src string, threat model.ThreatType, windowStart time.Time) ([]uint16, uint64, bool) {
	sh := t.getShard(src)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sources[src]
	if !ok || !st.windowStart.Equal(windowStart) {
		return nil, 0, false
	}
	st.fired[threat] = true

	ports := make([]uint16, 0, len(st.scannedPorts))
	for p := range st.scannedPorts {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })

	return ports, st.icmpCount, true
}

// ActiveSources returns the number of distinct sources currently tracked.
func (t *Tracker) ActiveSources() int {
	total := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		total += len(sh.sources)
		sh.mu.Unlock()
	}
	return total
}

// Start launches the background eviction sweep.
func (t *Tracker) Start() {
	t.wg.Add(1)
	go t.runSweeper()
	log.Printf("Tracker started with %d shards, window %s, sweep every %s", t.shardCount, t.window, t.sweepInterval)
}

// Stop terminates the eviction sweep.
func (t *Tracker) Stop() {
	close(t.done)
	t.wg.Wait()
}

func (t *Tracker) runSweeper() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			evicted := t.Sweep(time.Now())
			if evicted > 0 {
				log.Printf("Tracker sweep evicted %d idle sources", evicted)
			}
			metrics.ActiveSources.Set(float64(t.ActiveSources()))
		case <-t.done:
			return
		}
	}
}

// Sweep removes sources whose window has expired and that have been idle for
// at least twice the window length, bounding memory to active talkers. It
// returns the number of evicted sources.
func (t *Tracker) Sweep(now time.Time) int {
	idleCutoff := 2 * t.window
	evicted := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		for key, st := range sh.sources {
			if now.Sub(st.windowStart) >= t.window && now.Sub(st.lastSeen) >= idleCutoff {
				delete(sh.sources, key)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}

// getShard returns the shard responsible for a given source key.
func (t *Tracker) getShard(key string) *shard {
	hasher := fnv.New32a()
	hasher.Write([]byte(key))
	return t.shards[hasher.Sum32()%t.shardCount]
}
