package stats

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

type Type int

const (
	Traversed Type = iota
	Matched
	Scanned
	Formatted
)

// Stats collects counters for one run. Safe for concurrent use.
type Stats struct {
	start    time.Time
	counters map[Type]*atomic.Int64
}

func New() Stats {
	return Stats{
		start: time.Now(),
		counters: map[Type]*atomic.Int64{
			Traversed: {},
			Matched:   {},
			Scanned:   {},
			Formatted: {},
		},
	}
}

func (s *Stats) Add(t Type, delta int64) int64 {
	return s.counters[t].Add(delta)
}

func (s *Stats) Value(t Type) int64 {
	return s.counters[t].Load()
}

func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

func (s *Stats) Print() {
	components := []string{
		"traversed %d files",
		"matched %d files for formatting",
		"scanned %d files for directives",
		"formatted %d files in %v",
		"",
	}

	fmt.Printf(
		strings.Join(components, "\n"),
		s.Value(Traversed),
		s.Value(Matched),
		s.Value(Scanned),
		s.Value(Formatted),
		s.Elapsed().Round(time.Millisecond),
	)
}
