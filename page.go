package qpage

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/tidalware/qpage/internal/diaglog"
)

// DefaultArenaSize is the arena size used when Config.ArenaSize is zero,
// matching the smaller of the two sizes the source is cited as using
// (4096*16000 bytes, ≈64MiB).
const DefaultArenaSize = 4096 * 16000

// Config configures a Page. A zero ArenaSize is replaced by
// DefaultConfig.ArenaSize at Open time; the zero Framing is
// FramingTerminated; Advise is used as given. This follows the
// Config/DefaultConfig convention used elsewhere in this codebase rather
// than functional options.
type Config struct {
	// ArenaSize is the size in bytes of the message arena, excluding the
	// header. Defaults to DefaultArenaSize.
	ArenaSize int

	// Framing selects the message delimiting scheme. Defaults to
	// FramingTerminated.
	Framing Framing

	// Advise, when true, issues a sequential-access madvise hint on the
	// mapped arena (best-effort; a no-op on platforms without madvise).
	Advise bool
}

// DefaultConfig holds the default settings. Open takes only ArenaSize from
// it, when the Config passed in has a zero ArenaSize.
var DefaultConfig = Config{
	ArenaSize: DefaultArenaSize,
	Framing:   FramingTerminated,
	Advise:    true,
}

func (c Config) withDefaults() Config {
	if c.ArenaSize <= 0 {
		c.ArenaSize = DefaultConfig.ArenaSize
	}
	return c
}

// Page is one fixed-size, memory-mapped file: the header plus arena
// described in spec.md §3. All exported methods are safe for concurrent
// use by any number of goroutines in any number of processes that have
// the same file Open.
type Page struct {
	file   *os.File
	data   mmap.MMap
	arena  []byte
	cfg    Config
	closed bool
}

// Open maps path, creating and sizing it if necessary. Concurrent Open
// calls by multiple processes race harmlessly: ftruncate to the exact
// size is idempotent and every process ends up with the same bytes.
func Open(path string, cfg Config) (*Page, error) {
	cfg = cfg.withDefaults()
	total := int64(headerSize + cfg.ArenaSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		diaglog.Error("open page file failed", diaglog.String("path", path), diaglog.Err(err))
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		diaglog.Error("stat page file failed", diaglog.String("path", path), diaglog.Err(err))
		return nil, err
	}
	if info.Size() < total {
		if err := f.Truncate(total); err != nil {
			f.Close()
			diaglog.Error("truncate page file failed", diaglog.String("path", path), diaglog.Int64("size", total), diaglog.Err(err))
			return nil, err
		}
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		diaglog.Error("mmap page file failed", diaglog.String("path", path), diaglog.Err(err))
		return nil, err
	}

	p := &Page{
		file:  f,
		data:  data,
		arena: []byte(data)[headerSize:],
		cfg:   cfg,
	}

	if err := p.checkOrStampReady(); err != nil {
		p.Close()
		diaglog.Error("page word-width check failed", diaglog.String("path", path), diaglog.Err(err))
		return nil, err
	}

	diaglog.Debug("page opened", diaglog.String("path", path), diaglog.Int("arena_size", cfg.ArenaSize))

	if cfg.Advise {
		adviseSequential([]byte(data))
	}

	return p, nil
}

// checkOrStampReady repurposes the otherwise-unconsulted ready word as a
// format/word-width magic (spec.md §9 open question 5): a fresh, all-zero
// page is stamped with readyMagic; a page opened by an incompatible
// reimplementation fails loudly instead of silently corrupting state.
func (p *Page) checkOrStampReady() error {
	cur := loadWord([]byte(p.data), 0)
	if cur == 0 {
		casWord([]byte(p.data), 0, 0, readyMagic)
		return nil
	}
	if cur != readyMagic {
		return ErrWordWidthMismatch
	}
	return nil
}

// Push appends one message. It never blocks: a single atomic fetch-add
// reserves a byte range, an unsynchronized copy fills it, and a matching
// atomic fetch-sub commits it. Returns the number of bytes consumed on
// StatusOK, or StatusPageFull once the arena is exhausted.
func (p *Page) Push(payload []byte) (advance int, status Status, err error) {
	if p.closed {
		return 0, StatusError, ErrClosed
	}
	if err := p.cfg.Framing.validatePayload(payload); err != nil {
		return 0, StatusError, err
	}

	l := p.cfg.Framing.reservationSize(len(payload))
	if l >= len(p.arena) {
		return 0, StatusError, ErrPayloadTooLarge
	}

	delta := magic + uint64(l)
	// atomic.AddUint64 (and this addWord wrapper over it) returns the value
	// *after* the add, unlike C's atomic_fetch_add which returns the prior
	// value. Recover the prior value by subtracting delta back out before
	// deriving start, or every writer would reserve the range that
	// rightfully belongs to whichever writer reserves next.
	after := addWord([]byte(p.data), wordBytes, delta)
	prior := after - delta
	start := writeIndex(prior)

	if start+l >= len(p.arena) {
		// Reservation doesn't fit (one arena byte always stays free so the
		// page can be sealed): abandon, release writer-count, and (if
		// start is itself in-bounds) stamp the seal byte. Concurrent
		// writers may independently seal; the earliest 0xFD wins the
		// reader's attention.
		addWord([]byte(p.data), wordBytes, ^(magic - 1)) // -magic
		if start < len(p.arena) {
			p.arena[start] = sealByte
			diaglog.Debug("page sealed", diaglog.Int("seal_offset", start))
		}
		return 0, StatusPageFull, nil
	}

	consumed := p.cfg.Framing.writeBody(p.arena, start, payload)
	addWord([]byte(p.data), wordBytes, ^(magic - 1)) // -magic, release

	return consumed, StatusOK, nil
}

// Pop returns the message beginning at cursor, spinning cooperatively
// while a writer with a lower reservation is still in flight. spin is
// invoked between poll attempts and returns false to abandon the spin
// (e.g. on context cancellation), in which case Pop returns StatusTimeout.
func (p *Page) Pop(cursor int, spin func() bool) (msg []byte, status Status, err error) {
	if p.closed {
		return nil, StatusError, ErrClosed
	}

	end, ok := p.safeEnd(cursor, spin)
	if !ok {
		return nil, StatusTimeout, nil
	}
	if end > len(p.arena) {
		end = len(p.arena)
	}

	if end == cursor {
		return nil, StatusEmpty, nil
	}
	if p.arena[cursor] == sealByte {
		return nil, StatusFinished, nil
	}

	body, _, ferr := p.cfg.Framing.readBody(p.arena, cursor, end)
	if ferr != nil {
		return nil, StatusError, ferr
	}
	return body, StatusOK, nil
}

// safeEnd implements the two-step read-bound protocol from spec.md §4.1:
// a relaxed peek at the cached safe_end, falling back to a spin-load of
// state until writer-count is zero.
func (p *Page) safeEnd(cursor int, spin func() bool) (int, bool) {
	cached := loadWord([]byte(p.data), 2*wordBytes)
	if int(cached) > cursor {
		return int(cached), true
	}

	for {
		state := loadWord([]byte(p.data), wordBytes)
		if writersInFlight(state) == 0 {
			end := writeIndex(state)
			fetchMaxSafeEnd([]byte(p.data), 2*wordBytes, uint64(end))
			return end, true
		}
		if spin != nil && !spin() {
			return 0, false
		}
	}
}

// Framing reports the message-delimiting scheme this page was opened
// with, so a caller that only holds a *Page can recover the cursor
// arithmetic Push used.
func (p *Page) Framing() Framing {
	return p.cfg.Framing
}

// Close unmaps the page. The backing file is left on disk and may be
// reopened identically by Open.
func (p *Page) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.data.Unmap(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}
