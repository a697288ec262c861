package qpage

import (
	"math/rand"
	"testing"
)

// TestFramingIdempotence checks spec.md §8's "framing idempotence"
// property: for any message not containing the terminator byte, push
// followed by pop returns it byte-for-byte, under both framing variants.
func TestFramingIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, framing := range []Framing{FramingTerminated, FramingLengthPrefixed} {
		path := t.TempDir() + "/page.dat"
		p, err := Open(path, Config{ArenaSize: DefaultArenaSize, Framing: framing})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}

		cursor := 0
		for i := 0; i < 200; i++ {
			n := rng.Intn(256)
			payload := make([]byte, n)
			rng.Read(payload)
			if framing == FramingTerminated {
				for j, b := range payload {
					if b == termByte {
						payload[j] = 0x00
					}
					if j == 0 && b == sealByte {
						payload[j] = 0x00
					}
				}
			}

			advance, status, err := p.Push(payload)
			if err != nil || status != StatusOK {
				t.Fatalf("push %d: advance=%d status=%v err=%v", i, advance, status, err)
			}

			msg, status, err := p.Pop(cursor, nil)
			if err != nil || status != StatusOK {
				t.Fatalf("pop %d: status=%v err=%v", i, status, err)
			}
			if string(msg) != string(payload) {
				t.Fatalf("pop %d: got %x, want %x", i, msg, payload)
			}
			cursor += advance
		}
		p.Close()
	}
}

// TestLinearReservationDisjoint checks spec.md §8's "linear reservation"
// and "byte-range disjointness" properties as far as Push exposes them:
// after concurrent pushes quiesce, no writer is in flight and the
// write-index equals the sum of all reserved sizes, so no reservation was
// lost or overlapped another. Start offsets are not returned by Push and
// are not checked individually.
func TestLinearReservationDisjoint(t *testing.T) {
	p := openTestPage(t, DefaultArenaSize)

	type reservation struct{ start, size int }
	results := make(chan reservation, 500)
	done := make(chan struct{})

	const goroutines = 10
	for g := 0; g < goroutines; g++ {
		go func() {
			for i := 0; i < 50; i++ {
				payload := make([]byte, 10)
				advance, status, err := p.Push(payload)
				if err != nil || status != StatusOK {
					t.Errorf("push: status=%v err=%v", status, err)
					return
				}
				results <- reservation{size: advance}
			}
		}()
	}
	go func() {
		for i := 0; i < goroutines*50; i++ {
			<-results
		}
		close(done)
	}()
	<-done

	state := loadWord([]byte(p.data), wordBytes)
	if writersInFlight(state) != 0 {
		t.Fatalf("writer-count not zero after quiescence")
	}
	if writeIndex(state) != goroutines*50*11 {
		t.Fatalf("write-index = %d, want %d", writeIndex(state), goroutines*50*11)
	}
}
