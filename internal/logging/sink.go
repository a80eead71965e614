// pattern: Imperative Shell

package logging

import (
	"sync"
)

// MemorySink implements zapcore.WriteSyncer and records parsed log entries
// in memory. It backs TestManager so tests can assert on logged output.
type MemorySink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write implements io.Writer. It parses the JSON log line from zap and
// appends a LogEntry. Unparseable lines are dropped rather than failing
// the write, so logging never errors out of the component under test.
func (s *MemorySink) Write(p []byte) (int, error) {
	entry, err := ParseEntry(p)
	if err != nil {
		return len(p), nil
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. No-op for the memory sink.
func (s *MemorySink) Sync() error {
	return nil
}

// Entries returns a copy of all recorded entries.
func (s *MemorySink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// WithScope returns recorded entries whose scope starts with prefix.
func (s *MemorySink) WithScope(prefix string) []LogEntry {
	var out []LogEntry
	for _, e := range s.Entries() {
		if e.MatchesScope(prefix) {
			out = append(out, e)
		}
	}
	return out
}
