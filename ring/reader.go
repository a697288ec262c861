package ring

import (
	"github.com/tidalware/qpage"
	"github.com/tidalware/qpage/internal/diaglog"
)

// Reader independently walks a Ring from its own cursor. Each Reader
// advances at its own pace; readers share no mutable state with each
// other, matching the page-level guarantee that readers are independent
// (spec.md §5).
type Reader struct {
	r      *Ring
	seq    uint64
	offset int
	page   *qpage.Page
}

// NewReader opens (creating if necessary, which is harmless even for a
// reader since qpage.Open's truncate is idempotent) the page at startSeq
// and positions the Reader at startOffset within it.
func NewReader(r *Ring, startSeq uint64, startOffset int) (*Reader, error) {
	page, err := r.OpenPage(startSeq)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, seq: startSeq, offset: startOffset, page: page}, nil
}

// Seq returns the sequence number of the page the Reader currently holds
// open.
func (rd *Reader) Seq() uint64 {
	return rd.seq
}

// Offset returns the Reader's cursor within its current page.
func (rd *Reader) Offset() int {
	return rd.offset
}

// Pop returns the next message, transparently advancing to the next page
// on FINISHED. spin is forwarded to qpage.Page.Pop for each attempt
// against the current page. When the next page has not been created yet,
// Pop reports StatusEmpty rather than erroring — the writer simply hasn't
// reached it.
func (rd *Reader) Pop(spin func() bool) (msg []byte, status qpage.Status, err error) {
	msg, status, err = rd.page.Pop(rd.offset, spin)
	if err != nil {
		return nil, status, err
	}

	switch status {
	case qpage.StatusOK:
		rd.offset += len(msg) + rd.page.Framing().ReservationOverhead(len(msg))
		return msg, status, nil
	case qpage.StatusFinished:
		advanced, err := rd.advance()
		if err != nil {
			return nil, qpage.StatusError, err
		}
		if !advanced {
			return nil, qpage.StatusEmpty, nil
		}
		return rd.Pop(spin)
	default:
		return msg, status, nil
	}
}

// advance moves the Reader to the next sequential page. It returns
// (false, nil) when the next page simply doesn't exist yet (the caller
// should report EMPTY and retry later), and a non-nil error only for
// ErrEvicted or an I/O failure opening the next page.
func (rd *Reader) advance() (bool, error) {
	next := rd.seq + 1
	if rd.r.wasEvicted(next) {
		diaglog.Warn("reader fell behind eviction", diaglog.Uint64("seq", next))
		return false, ErrEvicted
	}
	if !rd.r.pageExists(next) {
		return false, nil
	}
	page, err := rd.r.OpenPage(next)
	if err != nil {
		return false, err
	}
	rd.page.Close()
	rd.page = page
	rd.seq = next
	rd.offset = 0
	return true, nil
}

// Clone returns an independent Reader sharing this Reader's current
// position but holding its own page handle, for sharing consumer access
// across goroutines or processes.
func (rd *Reader) Clone() (*Reader, error) {
	return NewReader(rd.r, rd.seq, rd.offset)
}

// Close unmaps the currently-open page.
func (rd *Reader) Close() error {
	return rd.page.Close()
}
