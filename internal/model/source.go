package model

import "errors"

// Sentinel errors a Source may return from Next. The pipeline maps them to
// its error policy: timeouts re-enter the read loop, malformed records are
// counted and skipped, a closed source ends the worker.
var (
	// ErrTimeout means no packet arrived within the capture timeout.
	ErrTimeout = errors.New("capture read timed out")

	// ErrMalformed means a frame was received but could not be decoded.
	ErrMalformed = errors.New("malformed packet")

	// ErrClosed means the source is drained or has been closed.
	ErrClosed = errors.New("capture source closed")
)

// Source delivers decoded packet records to the ingestion pipeline, one per
// call. Implementations must bound the time Next can block so that a pipeline
// stop is observed with bounded latency.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Next blocks until the next record is available, the capture timeout
	// elapses (ErrTimeout), or the source is exhausted (ErrClosed).
	Next() (*PacketRecord, error)

	// Close releases the underlying capture handle.
	Close() error
}
