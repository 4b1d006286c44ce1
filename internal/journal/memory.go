package journal

import (
	"context"
	"sync"

	"corridor_dispatch/internal/models"
)

// MemorySink keeps records in process. Used when no external sink is
// configured and in tests.
type MemorySink struct {
	mu      sync.RWMutex
	records []models.Record
	limit   int
}

// NewMemorySink keeps at most limit records; limit <= 0 keeps everything.
func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (m *MemorySink) Write(ctx context.Context, rec models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if m.limit > 0 && len(m.records) > m.limit {
		m.records = m.records[len(m.records)-m.limit:]
	}
	return nil
}

func (m *MemorySink) Close() error { return nil }

// Records returns a copy in write order.
func (m *MemorySink) Records() []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Record(nil), m.records...)
}

func (m *MemorySink) ByKind(kind models.RecordKind) []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Record
	for _, r := range m.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
