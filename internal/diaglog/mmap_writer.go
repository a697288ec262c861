package diaglog

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// flushPageSize is the granularity at which Write triggers an async Flush;
// it mirrors the teacher library's "only sync when crossing a page
// boundary" rule so a flush isn't spawned on every single small record.
const flushPageSize = 4096

// MMapWriter is an alternate Writer backend: it appends records into a
// circular region of a memory-mapped file, giving syscall-free writes once
// the mapping is established. It replaces the teacher library's three
// hand-rolled per-OS mmap files (mmap_unix.go/mmap_windows.go/mmap_netbsd.go)
// with github.com/edsrzf/mmap-go, which covers the same concern portably.
//
// This is a diagnostic log sink, not the qpage hot path: qpage's own
// mmap-backed arena is a different mapping with its own reservation
// protocol (see the qpage package).
type MMapWriter struct {
	file   *os.File
	data   mmap.MMap
	size   int64
	offset int64
}

// NewMMapWriter creates or reopens a size-byte ring file at path and maps it.
func NewMMapWriter(path string, size int64) (*MMapWriter, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, err
	}

	data, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &MMapWriter{file: file, data: data, size: size}, nil
}

// Writer adapts this MMapWriter to the Writer function type.
func (w *MMapWriter) Writer() Writer {
	return func(b []byte) error {
		_, err := w.Write(b)
		return err
	}
}

// Write appends b to the mapped region, wrapping to the start when it would
// overflow. It never calls into the kernel on the common path.
func (w *MMapWriter) Write(b []byte) (int, error) {
	n := int64(len(b))
	if n == 0 {
		return 0, nil
	}
	if n > w.size {
		n = w.size
		b = b[:n]
	}

	if w.offset+n > w.size {
		w.offset = 0
	}
	start := w.offset
	end := start + n
	copy(w.data[start:end], b)
	w.offset = end

	if start/flushPageSize != end/flushPageSize {
		go w.data.Flush()
	}

	return len(b), nil
}

// Close unmaps and closes the backing file.
func (w *MMapWriter) Close() error {
	if err := w.data.Unmap(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
