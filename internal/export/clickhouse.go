package export

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS security_alerts (
    AlertID      String,
    Timestamp    DateTime64(3),
    ThreatType   String,
    Severity     String,
    SourceIP     String,
    DestIP       String,
    Protocol     String,
    ScannedPorts Array(UInt16),
    PacketCount  UInt64,
    WindowStart  DateTime64(3),
    Status       String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Severity, Timestamp);
`

// Archiver is a distributor subscriber that batches alerts into ClickHouse.
// Deliver only buffers; a background loop flushes on an interval or when the
// batch size is reached, so the archive never back-pressures fan-out.
type Archiver struct {
	conn      driver.Conn
	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []*model.Alert

	done chan struct{}
	wg   sync.WaitGroup
}

// NewArchiver connects to ClickHouse, ensures the alerts table exists, and
// starts the flush loop.
func NewArchiver(cfg config.ClickHouseConfig) (*Archiver, error) {
	interval, err := time.ParseDuration(cfg.FlushInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid clickhouse flush_interval: %w", err)
	}

	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured alerts table exists.")

	a := &Archiver{
		conn:      conn,
		batchSize: cfg.BatchSize,
		interval:  interval,
		done:      make(chan struct{}),
	}
	a.wg.Add(1)
	go a.runFlusher()
	return a, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Name identifies this subscriber in logs and drop counters.
func (a *Archiver) Name() string {
	return "clickhouse-archive"
}

// Deliver buffers one alert for the next batch flush.
func (a *Archiver) Deliver(alert *model.Alert) error {
	a.mu.Lock()
	a.pending = append(a.pending, alert)
	flush := len(a.pending) >= a.batchSize
	a.mu.Unlock()

	if flush {
		return a.Flush()
	}
	return nil
}

func (a *Archiver) runFlusher() {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.Flush(); err != nil {
				log.Printf("Error flushing alerts to ClickHouse: %v", err)
			}
		case <-a.done:
			if err := a.Flush(); err != nil {
				log.Printf("Error flushing alerts to ClickHouse on shutdown: %v", err)
			}
			return
		}
	}
}

// Flush writes the buffered alerts as one batch insert.
func (a *Archiver) Flush() error {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(context.Background(), "INSERT INTO security_alerts")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, al := range pending {
		err = batch.Append(
			al.ID,
			al.Timestamp,
			string(al.Threat),
			string(al.Severity),
			al.SrcIP,
			al.DstIP,
			string(al.Protocol),
			al.Evidence.ScannedPorts,
			al.Evidence.PacketCount,
			al.Evidence.WindowStart,
			string(al.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to append alert to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Archived %d alert(s) to ClickHouse", len(pending))
	return nil
}

// Close flushes the remaining alerts and closes the connection.
func (a *Archiver) Close() error {
	close(a.done)
	a.wg.Wait()
	return a.conn.Close()
}
