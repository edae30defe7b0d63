package logbus

import (
	"sync"
	"time"
)

// Record is one leveled log entry. Time is unix milliseconds.
type Record struct {
	Time   int64          `json:"time"`
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Bus keeps a bounded replay buffer of records and fans new ones out to
// subscribers. Slow subscribers drop messages instead of blocking.
type Bus struct {
	mu     sync.RWMutex
	buf    []Record
	cap    int
	subs   map[chan Record]struct{}
	closed bool
}

func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 200
	}
	return &Bus{
		cap:  capacity,
		buf:  make([]Record, 0, capacity),
		subs: make(map[chan Record]struct{}),
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.buf = nil
}

func (b *Bus) Snapshot() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Record, len(b.buf))
	copy(out, b.buf)
	return out
}

func (b *Bus) Subscribe(buffer int) (<-chan Record, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Record, buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if b.subs != nil {
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Bus) Log(level, msg string, fields map[string]any) {
	rec := Record{
		Time:   time.Now().UnixMilli(),
		Level:  level,
		Msg:    msg,
		Fields: fields,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if len(b.buf) < b.cap {
		b.buf = append(b.buf, rec)
	} else if b.cap > 0 {
		copy(b.buf, b.buf[1:])
		b.buf[b.cap-1] = rec
	}
	for ch := range b.subs {
		select {
		case ch <- rec:
		default:
		}
	}
	b.mu.Unlock()
}

func (b *Bus) Debug(msg string, fields map[string]any) { b.Log("debug", msg, fields) }
func (b *Bus) Info(msg string, fields map[string]any)  { b.Log("info", msg, fields) }
func (b *Bus) Warn(msg string, fields map[string]any)  { b.Log("warn", msg, fields) }
func (b *Bus) Error(msg string, fields map[string]any) { b.Log("error", msg, fields) }
