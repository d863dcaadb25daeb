package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory in-process sink keeping counter totals, used by tests and the health endpoint
type Memory struct {
	mu        sync.Mutex
	counters  map[string]int
	durations map[string][]time.Duration
}

// NewMemory create empty memory sink
func NewMemory() *Memory {
	return &Memory{
		counters:  make(map[string]int),
		durations: make(map[string][]time.Duration),
	}
}

func seriesKey(name string, labels Labels) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(labels[k])
	}
	return b.String()
}

func (m *Memory) IncCounter(name string, labels Labels) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, labels)]++
}

func (m *Memory) ObserveDuration(name string, d time.Duration, labels Labels) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, labels)
	m.durations[key] = append(m.durations[key], d)
}

// Count counter value of one series
func (m *Memory) Count(name string, labels Labels) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[seriesKey(name, labels)]
}

// Observations number of durations recorded for one series
func (m *Memory) Observations(name string, labels Labels) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.durations[seriesKey(name, labels)])
}
