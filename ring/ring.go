// Package ring sequences qpage.Page files into a directory-level broadcast
// channel: allocating the next page when a writer sees PAGE_FULL, advancing
// a reader to the next page when it sees FINISHED, and evicting old pages
// once a configured maximum is exceeded. qpage treats a single Page as an
// opaque building block; ring is the collaborator spec.md's §6 describes
// but leaves unspecified.
package ring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidalware/qpage"
	"github.com/tidalware/qpage/internal/diaglog"
)

// ErrEvicted is returned to a reader whose cursor page has been removed
// by eviction rather than simply not yet existing. The two cases must be
// distinguished: a page file absent because no writer has reached it yet
// is EMPTY and retryable, but one absent because it aged out is a genuine
// data-loss signal the caller should not silently treat as EMPTY.
var ErrEvicted = errors.New("ring: page was evicted before it could be read")

// Config configures a Ring. Zero-valued fields fall back to DefaultConfig.
type Config struct {
	// ArenaSize is passed through to qpage.Open for every page in the ring.
	ArenaSize int

	// Framing is passed through to qpage.Open for every page in the ring.
	Framing qpage.Framing

	// MaxPages bounds how many page files are retained at once. Zero means
	// unbounded (no eviction). When exceeded, a Writer rolling over to a
	// new page unlinks the oldest retained pages.
	MaxPages int
}

// DefaultConfig is used for any zero-valued Config field passed to Open.
var DefaultConfig = Config{
	ArenaSize: qpage.DefaultArenaSize,
	Framing:   qpage.FramingTerminated,
	MaxPages:  0,
}

func (c Config) withDefaults() Config {
	if c.ArenaSize <= 0 {
		c.ArenaSize = DefaultConfig.ArenaSize
	}
	return c
}

// Ring is a directory of sequentially-numbered page files sharing one
// Config. Multiple processes may open the same directory concurrently;
// page files are addressed purely by sequence number, so there is no
// shared in-memory state to coordinate beyond what qpage.Page itself
// provides.
type Ring struct {
	dir string
	cfg Config

	mu      sync.Mutex
	oldest  uint64
	hasOld  bool
}

// Open prepares dir (creating it if necessary) as the backing directory
// for a ring of pages under cfg.
func Open(dir string, cfg Config) (*Ring, error) {
	cfg = cfg.withDefaults()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Ring{dir: dir, cfg: cfg}, nil
}

// filename formats a page's sequence number the way spec.md §6 suggests:
// lexicographically-ordered integer sequence numbers.
func (r *Ring) filename(seq uint64) string {
	return fmt.Sprintf("%020d.page", seq)
}

// PagePath returns the on-disk path for sequence number seq.
func (r *Ring) PagePath(seq uint64) string {
	return filepath.Join(r.dir, r.filename(seq))
}

// OpenPage maps (creating if absent) the page at sequence number seq.
func (r *Ring) OpenPage(seq uint64) (*qpage.Page, error) {
	return qpage.Open(r.PagePath(seq), qpage.Config{
		ArenaSize: r.cfg.ArenaSize,
		Framing:   r.cfg.Framing,
	})
}

// pageExists reports whether seq's file has ever been created, without
// creating it — used by a reader to distinguish "writer hasn't reached
// this page yet" (EMPTY) from "this page existed and was evicted"
// (ErrEvicted).
func (r *Ring) pageExists(seq uint64) bool {
	_, err := os.Stat(r.PagePath(seq))
	return err == nil
}

// Exists reports whether seq's page file is present on disk, without
// creating it. Exported for operational tooling that wants to probe ring
// state without mapping a page.
func (r *Ring) Exists(seq uint64) bool {
	return r.pageExists(seq)
}

// wasEvicted reports whether seq is known to have been retired by a
// prior evictOlderThan call.
func (r *Ring) wasEvicted(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasOld && seq < r.oldest
}

// evictOlderThan unlinks every page file with sequence number strictly
// less than keepFrom. Called by the writer once MaxPages is exceeded;
// readers that fall behind the evicted range observe ErrEvicted rather
// than silently skipping data.
func (r *Ring) evictOlderThan(keepFrom uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasOld && keepFrom <= r.oldest {
		return
	}
	start := uint64(0)
	if r.hasOld {
		start = r.oldest
	}
	for seq := start; seq < keepFrom; seq++ {
		os.Remove(r.PagePath(seq))
	}
	diaglog.Info("evicted pages", diaglog.Uint64("from", start), diaglog.Uint64("to", keepFrom))
	r.oldest = keepFrom
	r.hasOld = true
}

// maybeEvict is called by the writer after allocating sequence number
// newSeq. With MaxPages set, it retires every page MaxPages or more
// behind newSeq, so at most MaxPages pages (newSeq included) remain.
func (r *Ring) maybeEvict(newSeq uint64) {
	if r.cfg.MaxPages <= 0 {
		return
	}
	if newSeq+1 <= uint64(r.cfg.MaxPages) {
		return
	}
	r.evictOlderThan(newSeq + 1 - uint64(r.cfg.MaxPages))
}
