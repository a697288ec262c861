package ring

import (
	"github.com/tidalware/qpage"
	"github.com/tidalware/qpage/internal/diaglog"
)

// Writer appends messages to a Ring, opening the next page whenever the
// current one reports PAGE_FULL. A Writer is not safe for concurrent use
// by multiple goroutines sharing the same value (each goroutine that
// wants to push independently should Clone the Writer; the underlying
// Page is itself lock-free and safe for concurrent Push).
type Writer struct {
	r    *Ring
	seq  uint64
	page *qpage.Page
}

// NewWriter opens (or creates) the page at startSeq and returns a Writer
// positioned there. Most callers pass 0 for a brand-new ring, or the
// sequence number recovered from a prior run.
func NewWriter(r *Ring, startSeq uint64) (*Writer, error) {
	page, err := r.OpenPage(startSeq)
	if err != nil {
		return nil, err
	}
	return &Writer{r: r, seq: startSeq, page: page}, nil
}

// Seq returns the sequence number of the page the Writer currently holds
// open.
func (w *Writer) Seq() uint64 {
	return w.seq
}

// Push appends payload, transparently rolling over to the next page on
// PAGE_FULL and retrying once. The returned seq identifies which page the
// message landed in.
func (w *Writer) Push(payload []byte) (seq uint64, advance int, err error) {
	advance, status, err := w.page.Push(payload)
	if err != nil {
		return w.seq, 0, err
	}
	if status == qpage.StatusOK {
		return w.seq, advance, nil
	}

	// status == StatusPageFull: roll over and retry exactly once. A
	// payload that can never fit in a fresh page never gets here: the
	// first Push already rejected it with ErrPayloadTooLarge.
	if err := w.rollover(); err != nil {
		return w.seq, 0, err
	}
	advance, status, err = w.page.Push(payload)
	if err != nil {
		return w.seq, 0, err
	}
	if status != qpage.StatusOK {
		return w.seq, 0, err
	}
	return w.seq, advance, nil
}

func (w *Writer) rollover() error {
	next := w.seq + 1
	page, err := w.r.OpenPage(next)
	if err != nil {
		diaglog.Error("rollover failed to open next page", diaglog.Uint64("seq", next), diaglog.Err(err))
		return err
	}
	w.page.Close()
	w.page = page
	w.seq = next
	diaglog.Info("rolled over to next page", diaglog.Uint64("seq", next))
	w.r.maybeEvict(next)
	return nil
}

// Clone returns an independent Writer starting at this Writer's current
// sequence number and opening its own handle to that page, for sharing
// producer access across goroutines or processes without sharing Go-level
// mutable state.
func (w *Writer) Clone() (*Writer, error) {
	return NewWriter(w.r, w.seq)
}

// Close unmaps the currently-open page. The page file itself persists.
func (w *Writer) Close() error {
	return w.page.Close()
}
