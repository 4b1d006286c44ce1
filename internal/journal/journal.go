// Package journal fans engine records out to append-only sinks.
//
// The engine hands records over under its own lock, so Dispatcher.Record
// never blocks: records are queued and written by a single background
// worker, and dropped with a log line when the queue is full. Sink errors
// are logged and never reach the engine. Nothing here is read back into
// the simulation.
package journal

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"corridor_dispatch/internal/models"
)

// Sink persists or forwards journal records.
type Sink interface {
	Write(ctx context.Context, rec models.Record) error
	Close() error
}

const (
	defaultBuffer       = 256
	defaultWriteTimeout = 15 * time.Second
)

// Dispatcher queues records and writes each one to every sink in order.
type Dispatcher struct {
	sinks        []Sink
	queue        chan models.Record
	writeTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewDispatcher starts the background worker. buffer <= 0 picks a default.
func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		sinks:        sinks,
		queue:        make(chan models.Record, buffer),
		writeTimeout: defaultWriteTimeout,
		done:         make(chan struct{}),
	}
	go d.run()
	return d
}

// Record enqueues rec without blocking.
func (d *Dispatcher) Record(rec models.Record) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- rec:
	default:
		n := d.dropped.Add(1)
		log.Printf("[journal] queue full, dropped %s record %s (total dropped=%d)", rec.Kind, rec.ID, n)
	}
}

// Dropped reports how many records were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close drains queued records, then closes every sink.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
	var errs []error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for rec := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
			if err := s.Write(ctx, rec); err != nil {
				log.Printf("[journal] sink %T write %s %s: %v", s, rec.Kind, rec.ID, err)
			}
			cancel()
		}
	}
}

// recordKey picks the partition/ordering key for a record.
func recordKey(rec models.Record) string {
	if rec.TrainNumber != "" {
		return rec.TrainNumber
	}
	return rec.ID
}
