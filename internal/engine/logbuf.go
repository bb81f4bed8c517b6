package engine

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"autoabsen/internal/models"
)

// logCapacity bounds the caller-facing log buffer; oldest entries are
// evicted first.
const logCapacity = 100

// LogBuffer is a bounded FIFO of caller-facing log entries. Every entry is
// mirrored to slog so process logs stay complete even after eviction.
type LogBuffer struct {
	mu      sync.Mutex
	entries []models.LogEntry
	entropy *rand.Rand
}

// NewLogBuffer creates an empty log buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Add appends an entry, evicting the oldest past capacity.
func (b *LogBuffer) Add(level models.LogLevel, message string) {
	b.mu.Lock()
	entry := models.LogEntry{
		ID:      ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(b.entropy, 0)).String(),
		Time:    time.Now(),
		Message: message,
		Level:   level,
	}
	b.entries = append(b.entries, entry)
	if len(b.entries) > logCapacity {
		b.entries = b.entries[len(b.entries)-logCapacity:]
	}
	b.mu.Unlock()

	switch level {
	case models.LogLevelWarning:
		slog.Warn(message)
	case models.LogLevelError:
		slog.Error(message)
	default:
		slog.Info(message)
	}
}

// Recent returns up to n most recent entries, oldest first.
func (b *LogBuffer) Recent(n int) []models.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := 0
	if len(b.entries) > n {
		start = len(b.entries) - n
	}
	out := make([]models.LogEntry, len(b.entries)-start)
	copy(out, b.entries[start:])
	return out
}

// Clear drops all entries.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
