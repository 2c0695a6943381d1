package alert

import (
	"errors"
	"sync"

	"NetSentra/internal/metrics"
	"NetSentra/internal/model"
)

// ErrNotFound is returned by UpdateStatus when no alert has the given id.
var ErrNotFound = errors.New("alert not found")

// Store is a bounded, thread-safe append log of alerts. Once the log is full
// the oldest alert is evicted per append; evictions are counted, and the
// all-time counters in Statistics keep reflecting evicted alerts.
type Store struct {
	mu       sync.RWMutex
	buf      []*model.Alert
	head     int // index of the oldest retained alert
	size     int
	capacity int
	index    map[string]*model.Alert

	total      uint64
	dropped    uint64
	bySeverity map[model.Severity]uint64
	byThreat   map[model.ThreatType]uint64
}

// NewStore creates a Store retaining at most capacity alerts.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Store{
		buf:        make([]*model.Alert, capacity),
		capacity:   capacity,
		index:      make(map[string]*model.Alert),
		bySeverity: make(map[model.Severity]uint64),
		byThreat:   make(map[model.ThreatType]uint64),
	}
}

// Append adds an alert to the log, evicting the oldest retained alert if the
// log is at capacity. The store keeps its own copy so later status updates
// never race with readers of the published alert.
func (s *Store) Append(a *model.Alert) {
	cp := *a

	s.mu.Lock()
	if s.size == s.capacity {
		old := s.buf[s.head]
		delete(s.index, old.ID)
		s.buf[s.head] = &cp
		s.head = (s.head + 1) % s.capacity
		s.dropped++
		metrics.AlertsEvicted.Inc()
	} else {
		s.buf[(s.head+s.size)%s.capacity] = &cp
		s.size++
	}
	s.index[cp.ID] = &cp
	s.total++
	s.bySeverity[cp.Severity]++
	s.byThreat[cp.Threat]++
	s.mu.Unlock()

	metrics.AlertsTotal.WithLabelValues(string(a.Severity), string(a.Threat)).Inc()
}

// Recent returns up to limit of the most recent alerts, oldest first. The
// limit is clamped to the retained count; the returned alerts are copies.
func (s *Store) Recent(limit int) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 0 || limit > s.size {
		limit = s.size
	}
	out := make([]model.Alert, 0, limit)
	for i := s.size - limit; i < s.size; i++ {
		out = append(out, *s.buf[(s.head+i)%s.capacity])
	}
	return out
}

// Get returns a copy of the alert with the given id.
func (s *Store) Get(id string) (model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.index[id]
	if !ok {
		return model.Alert{}, ErrNotFound
	}
	return *a, nil
}

// UpdateStatus changes the acknowledgement status of a retained alert.
func (s *Store) UpdateStatus(id string, status model.AlertStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

// Statistics returns the aggregate alert statistics. All-time totals survive
// log eviction; RetainedCount is the current log size.
func (s *Store) Statistics() model.AlertStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.AlertStatistics{
		TotalAlerts:   s.total,
		RetainedCount: s.size,
		DroppedAlerts: s.dropped,
		BySeverity:    make(map[model.Severity]uint64, len(s.bySeverity)),
		ByThreat:      make(map[model.ThreatType]uint64, len(s.byThreat)),
	}
	for k, v := range s.bySeverity {
		stats.BySeverity[k] = v
	}
	for k, v := range s.byThreat {
		stats.ByThreat[k] = v
	}
	return stats
}
