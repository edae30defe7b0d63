package logbus

import (
	"testing"
	"time"
)

func TestSnapshot_RingBuffer(t *testing.T) {
	bus := New(3)
	defer bus.Close()

	for i := 0; i < 5; i++ {
		bus.Info("msg", map[string]any{"i": i})
	}

	snap := bus.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	if snap[0].Fields["i"] != 2 || snap[2].Fields["i"] != 4 {
		t.Errorf("ring buffer kept wrong records: %v", snap)
	}
}

func TestSubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch, cancel := bus.Subscribe(8)
	defer cancel()

	bus.Warn("hello", nil)

	select {
	case rec := <-ch:
		if rec.Level != "warn" || rec.Msg != "hello" {
			t.Errorf("rec = %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("no record delivered")
	}
}

func TestSubscribe_CancelCloses(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch, cancel := bus.Subscribe(1)
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after cancel")
	}
	// publishing after cancel must not panic
	bus.Info("after", nil)
}

func TestClose(t *testing.T) {
	bus := New(10)
	ch, _ := bus.Subscribe(1)
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after bus close")
	}
	bus.Info("ignored", nil)
	if snap := bus.Snapshot(); len(snap) != 0 {
		t.Errorf("snapshot after close = %v", snap)
	}
}
