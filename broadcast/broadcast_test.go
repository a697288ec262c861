package broadcast

import (
	"testing"

	"github.com/tidalware/qpage"
)

func TestProducerConsumerRoundTrip(t *testing.T) {
	ch, err := Open(t.TempDir(), Config{ArenaSize: 4096})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	prod, err := ch.NewProducer(0)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer prod.Close()

	cons, err := ch.NewConsumer(0, 0)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	defer cons.Close()

	if _, err := prod.Push([]byte("hello")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	msg, status, err := cons.Next(nil)
	if err != nil || status != qpage.StatusOK {
		t.Fatalf("Next: status=%v err=%v", status, err)
	}
	if string(msg) != "hello" {
		t.Fatalf("msg = %q", msg)
	}

	_, status, err = cons.Next(nil)
	if err != nil || status != qpage.StatusEmpty {
		t.Fatalf("Next (drained): status=%v err=%v", status, err)
	}
}

func TestMultipleConsumersIndependentCursors(t *testing.T) {
	ch, err := Open(t.TempDir(), Config{ArenaSize: 4096})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	prod, err := ch.NewProducer(0)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer prod.Close()

	if _, err := prod.Push([]byte("one")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	a, err := ch.NewConsumer(0, 0)
	if err != nil {
		t.Fatalf("NewConsumer a: %v", err)
	}
	defer a.Close()
	b, err := ch.NewConsumer(0, 0)
	if err != nil {
		t.Fatalf("NewConsumer b: %v", err)
	}
	defer b.Close()

	if _, status, err := a.Next(nil); err != nil || status != qpage.StatusOK {
		t.Fatalf("a.Next: status=%v err=%v", status, err)
	}
	if _, status, err := a.Next(nil); err != nil || status != qpage.StatusEmpty {
		t.Fatalf("a.Next drained: status=%v err=%v", status, err)
	}

	msg, status, err := b.Next(nil)
	if err != nil || status != qpage.StatusOK {
		t.Fatalf("b.Next: status=%v err=%v", status, err)
	}
	if string(msg) != "one" {
		t.Fatalf("b got %q, want %q", msg, "one")
	}
}

func TestConsumerCloneIndependentPosition(t *testing.T) {
	ch, err := Open(t.TempDir(), Config{ArenaSize: 4096})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	prod, err := ch.NewProducer(0)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer prod.Close()
	if _, err := prod.Push([]byte("a")); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := prod.Push([]byte("b")); err != nil {
		t.Fatalf("Push: %v", err)
	}

	cons, err := ch.NewConsumer(0, 0)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	defer cons.Close()

	if _, _, err := cons.Next(nil); err != nil {
		t.Fatalf("Next: %v", err)
	}

	clone, err := cons.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	defer clone.Close()

	if _, _, err := cons.Next(nil); err != nil {
		t.Fatalf("cons.Next: %v", err)
	}
	// clone's cursor was frozen at Clone time, before cons read "b".
	msg, status, err := clone.Next(nil)
	if err != nil || status != qpage.StatusOK {
		t.Fatalf("clone.Next: status=%v err=%v", status, err)
	}
	if string(msg) != "b" {
		t.Fatalf("clone got %q, want %q", msg, "b")
	}
}
