// Package broadcast provides producer/consumer ergonomics over a ring of
// qpage pages: named, clonable handles suitable for sharing across
// goroutines (or, since the backing pages are mmap'd files, across
// unrelated processes that agree on the same directory).
package broadcast

import (
	"github.com/tidalware/qpage"
	"github.com/tidalware/qpage/ring"
)

// Config configures a Channel's backing ring. See ring.Config for field
// semantics.
type Config = ring.Config

// DefaultConfig mirrors ring.DefaultConfig.
var DefaultConfig = ring.DefaultConfig

// Channel is a directory-backed broadcast channel: any number of
// Producers may append, and any number of Consumers may independently
// read the full stream from page 0 forward (or from wherever they were
// positioned), per spec.md §1's multi-producer/multi-consumer model.
type Channel struct {
	r *ring.Ring
}

// Open prepares dir as the backing directory for a Channel.
func Open(dir string, cfg Config) (*Channel, error) {
	r, err := ring.Open(dir, cfg)
	if err != nil {
		return nil, err
	}
	return &Channel{r: r}, nil
}

// NewProducer returns a Producer appending starting at sequence number
// startSeq (0 for a brand-new channel).
func (c *Channel) NewProducer(startSeq uint64) (*Producer, error) {
	w, err := ring.NewWriter(c.r, startSeq)
	if err != nil {
		return nil, err
	}
	return &Producer{w: w}, nil
}

// NewConsumer returns a Consumer reading from sequence number startSeq at
// startOffset (0, 0 to read the entire retained history from the start).
func (c *Channel) NewConsumer(startSeq uint64, startOffset int) (*Consumer, error) {
	rd, err := ring.NewReader(c.r, startSeq, startOffset)
	if err != nil {
		return nil, err
	}
	return &Consumer{rd: rd}, nil
}

// Producer appends messages to a Channel.
type Producer struct {
	w *ring.Writer
}

// Push appends payload, rolling over to a new page transparently. It
// returns the sequence number of the page the message landed in, which a
// caller may record to hand a Consumer a durable resume point.
func (p *Producer) Push(payload []byte) (seq uint64, err error) {
	seq, _, err = p.w.Push(payload)
	return seq, err
}

// Clone returns an independent Producer positioned at this one's current
// page, with its own handle — for sharing producer access across
// goroutines without sharing Go-level mutable state.
func (p *Producer) Clone() (*Producer, error) {
	w, err := p.w.Clone()
	if err != nil {
		return nil, err
	}
	return &Producer{w: w}, nil
}

// Close releases the Producer's page handle.
func (p *Producer) Close() error {
	return p.w.Close()
}

// Consumer reads messages from a Channel at its own independent cursor.
type Consumer struct {
	rd *ring.Reader
}

// Next returns the next message and its status: qpage.StatusOK with a
// valid msg, qpage.StatusEmpty when the channel is caught up, or
// qpage.StatusTimeout when spin returned false before a writer in flight
// committed. A nil spin never abandons and busy-polls.
func (c *Consumer) Next(spin func() bool) (msg []byte, status qpage.Status, err error) {
	return c.rd.Pop(spin)
}

// Position returns the Consumer's current (sequence, offset) cursor, a
// durable resume point a caller may persist and pass back to NewConsumer.
func (c *Consumer) Position() (seq uint64, offset int) {
	return c.rd.Seq(), c.rd.Offset()
}

// Clone returns an independent Consumer starting at this one's current
// cursor, with its own page handle, for sharing consumer access across
// goroutines.
func (c *Consumer) Clone() (*Consumer, error) {
	rd, err := c.rd.Clone()
	if err != nil {
		return nil, err
	}
	return &Consumer{rd: rd}, nil
}

// Close releases the Consumer's page handle.
func (c *Consumer) Close() error {
	return c.rd.Close()
}
