package metrics

import (
	"sort"
	"sync"
	"time"

	"futures-testnet-bot/internal/logger"
)

// DefaultBatch is how many calls of one operation pass between summary log lines.
const DefaultBatch = 50

// Tracker keeps round-trip latency per exchange operation (ping, order).
type Tracker struct {
	mu        sync.Mutex
	ops       map[string]*opStats
	batch     int
	startTime time.Time
}

type opStats struct {
	count     int64
	failures  int64
	minTime   time.Duration
	maxTime   time.Duration
	totalTime time.Duration
	last      time.Duration
	batch     int
}

// OpSnapshot is the JSON view of one operation.
type OpSnapshot struct {
	Op       string  `json:"op"`
	Count    int64   `json:"count"`
	Failures int64   `json:"failures"`
	MinMs    float64 `json:"minMs"`
	MaxMs    float64 `json:"maxMs"`
	AvgMs    float64 `json:"avgMs"`
	LastMs   float64 `json:"lastMs"`
}

type Snapshot struct {
	UptimeSec int64        `json:"uptimeSec"`
	Ops       []OpSnapshot `json:"ops"`
}

func NewTracker() *Tracker {
	return &Tracker{
		ops:       make(map[string]*opStats),
		batch:     DefaultBatch,
		startTime: time.Now(),
	}
}

// Track records one call. A non-nil err counts as a failure but still records the latency.
func (t *Tracker) Track(op string, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.ops[op]
	if !ok {
		s = &opStats{minTime: time.Duration(1<<63 - 1)} // max duration
		t.ops[op] = s
	}

	s.count++
	s.batch++
	s.totalTime += duration
	s.last = duration
	if err != nil {
		s.failures++
	}
	if duration < s.minTime {
		s.minTime = duration
	}
	if duration > s.maxTime {
		s.maxTime = duration
	}

	if t.batch > 0 && s.batch >= t.batch {
		avgTime := s.totalTime / time.Duration(s.count)
		logger.Info("Latency Metrics",
			"op", op,
			"min_ms", s.minTime.Milliseconds(),
			"max_ms", s.maxTime.Milliseconds(),
			"avg_ms", avgTime.Milliseconds(),
			"count", s.count,
			"failures", s.failures,
		)
		s.batch = 0
	}
}

// Time runs fn and tracks its duration and error under op.
func (t *Tracker) Time(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	t.Track(op, time.Since(start), err)
	return err
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{UptimeSec: int64(time.Since(t.startTime).Seconds())}
	for op, s := range t.ops {
		snap.Ops = append(snap.Ops, OpSnapshot{
			Op:       op,
			Count:    s.count,
			Failures: s.failures,
			MinMs:    ms(s.minTime),
			MaxMs:    ms(s.maxTime),
			AvgMs:    ms(s.totalTime / time.Duration(s.count)),
			LastMs:   ms(s.last),
		})
	}
	sort.Slice(snap.Ops, func(i, j int) bool { return snap.Ops[i].Op < snap.Ops[j].Op })
	return snap
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
