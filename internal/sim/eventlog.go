package sim

import "corridor_dispatch/internal/models"

const defaultEventLogCapacity = 50

// eventLog is a fixed-capacity ring; the oldest entry is overwritten first.
type eventLog struct {
	buf  []models.EventLogEntry
	next int
	size int
}

func newEventLog(capacity int) *eventLog {
	if capacity <= 0 {
		capacity = defaultEventLogCapacity
	}
	return &eventLog{buf: make([]models.EventLogEntry, capacity)}
}

func (l *eventLog) add(e models.EventLogEntry) {
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// entries returns newest first.
func (l *eventLog) entries() []models.EventLogEntry {
	out := make([]models.EventLogEntry, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

func (l *eventLog) reset() {
	l.next = 0
	l.size = 0
	clear(l.buf)
}
