package diaglog

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// entrySize bounds how much of an encoded record AsyncWriter will carry
// through the ring; it matches the pooled buffer size used elsewhere in
// this package.
const entrySize = 1024

// ringEntry is one queued record. Fixed size so Put/Get never allocate.
type ringEntry struct {
	data [entrySize]byte
	len  int
}

// RingBuffer is a lock-free single-producer, multiple-consumer ring of
// ringEntry slots, used to decouple the caller of Debug/Info/... from the
// (possibly slow) underlying Writer.
type RingBuffer struct {
	_    [CacheLineSize]byte
	mask uint64
	_    [CacheLineSize - 8]byte
	head atomic.Uint64
	_    [CacheLineSize - 8]byte
	tail atomic.Uint64
	_    [CacheLineSize - 8]byte

	buffer []unsafe.Pointer
	size   int
}

// NewRingBuffer creates a ring buffer of the given size, which must be a
// power of two.
func NewRingBuffer(size int) *RingBuffer {
	if size&(size-1) != 0 {
		panic("diaglog: ring buffer size must be a power of 2")
	}
	return &RingBuffer{
		buffer: make([]unsafe.Pointer, size),
		size:   size,
		mask:   uint64(size - 1),
	}
}

// Put enqueues data, copying it into a fixed-size slot. It reports false if
// the buffer is full.
func (rb *RingBuffer) Put(data []byte) bool {
	head := rb.head.Load()
	next := (head + 1) & rb.mask

	if next == rb.tail.Load() {
		return false
	}

	entry := &ringEntry{}
	entry.len = copy(entry.data[:], data)

	atomic.StorePointer(&rb.buffer[head], unsafe.Pointer(entry))
	rb.head.Store(next)
	return true
}

// Get dequeues the oldest entry. Safe for multiple concurrent consumers.
func (rb *RingBuffer) Get() ([]byte, bool) {
	for {
		tail := rb.tail.Load()
		head := rb.head.Load()
		if tail == head {
			return nil, false
		}

		next := (tail + 1) & rb.mask
		if rb.tail.CompareAndSwap(tail, next) {
			for {
				p := atomic.LoadPointer(&rb.buffer[tail])
				if p != nil {
					entry := (*ringEntry)(p)
					atomic.StorePointer(&rb.buffer[tail], nil)
					return entry.data[:entry.len], true
				}
				runtime.Gosched()
			}
		}
	}
}

// AsyncWriter wraps a Writer with a ring buffer so logging calls never
// block on the underlying sink; a single goroutine drains the ring.
type AsyncWriter struct {
	rb     *RingBuffer
	writer Writer
	done   chan struct{}
}

// NewAsyncWriter starts a consumer goroutine draining into w.
func NewAsyncWriter(w Writer, bufferSize int) *AsyncWriter {
	aw := &AsyncWriter{
		rb:     NewRingBuffer(bufferSize),
		writer: w,
		done:   make(chan struct{}),
	}
	go aw.consumer()
	return aw
}

func (aw *AsyncWriter) consumer() {
	for {
		select {
		case <-aw.done:
			for {
				data, ok := aw.rb.Get()
				if !ok {
					return
				}
				aw.writer(data)
			}
		default:
			data, ok := aw.rb.Get()
			if ok {
				aw.writer(data)
			} else {
				runtime.Gosched()
			}
		}
	}
}

// Write enqueues b, falling back to a direct (blocking) write if the ring
// is full rather than silently dropping the record.
func (aw *AsyncWriter) Write(b []byte) error {
	if aw.rb.Put(b) {
		return nil
	}
	return aw.writer(b)
}

// Close stops the consumer goroutine after draining remaining entries.
func (aw *AsyncWriter) Close() error {
	close(aw.done)
	return nil
}

// Writer adapts this AsyncWriter to the Writer function type.
func (aw *AsyncWriter) Writer() Writer {
	return func(b []byte) error {
		return aw.Write(b)
	}
}
