package diaglog

import (
	"sync"
	"testing"
	"time"
)

func TestRingBufferPutGet(t *testing.T) {
	rb := NewRingBuffer(4)
	if !rb.Put([]byte("a")) {
		t.Fatal("put failed on empty buffer")
	}
	data, ok := rb.Get()
	if !ok || string(data) != "a" {
		t.Fatalf("got %q, %v", data, ok)
	}
	if _, ok := rb.Get(); ok {
		t.Fatal("expected empty buffer")
	}
}

func TestRingBufferFillsUp(t *testing.T) {
	rb := NewRingBuffer(2) // one usable slot: head==tail means empty
	if !rb.Put([]byte("a")) {
		t.Fatal("first put should succeed")
	}
	if rb.Put([]byte("b")) {
		t.Fatal("second put should report full")
	}
}

func TestAsyncWriterDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string

	aw := NewAsyncWriter(func(b []byte) error {
		mu.Lock()
		got = append(got, string(b))
		mu.Unlock()
		return nil
	}, 1024)

	for i := 0; i < 100; i++ {
		if err := aw.Write([]byte{byte(i)}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 100 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only delivered %d of 100 entries", n)
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	for i, s := range got {
		if s != string([]byte{byte(i)}) {
			mu.Unlock()
			t.Fatalf("entry %d = %q, want %q", i, s, string([]byte{byte(i)}))
		}
	}
	mu.Unlock()

	aw.Close()
}
