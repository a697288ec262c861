package qpage

import "errors"

// Errors returned by Open, Push and Pop. ErrWordWidthMismatch is an
// initialization failure, fatal at startup and not recoverable by this
// package; the others reject a payload, report a malformed frame, or
// report use of a closed page.
var (
	// ErrWordWidthMismatch is returned by Open when an existing page file's
	// ready word does not match this process's word-width/format magic —
	// the ready field repurposed per spec.md §9 open question 5, instead of
	// being declared and never consulted.
	ErrWordWidthMismatch = errors.New("qpage: page file was created with an incompatible word width or format")

	// ErrPayloadTooLarge is returned by Push when a message cannot possibly
	// fit in an empty page, so retrying against a fresh page would not help
	// either — a distinct condition from PageFull, which means only THIS
	// page (already partially written) lacks room.
	ErrPayloadTooLarge = errors.New("qpage: payload exceeds the page arena size")

	// ErrPayloadContainsTerminator is returned by Push for the default
	// (non-length-prefixed) framing when payload contains the 0xFF
	// terminator byte, which Pop would otherwise misparse as the end of the
	// message. See spec.md §9 open question 2.
	ErrPayloadContainsTerminator = errors.New("qpage: payload contains the message terminator byte (0xFF)")

	// ErrPayloadCollidesWithSeal is returned by Push for the default framing
	// when payload's first byte is the 0xFD seal sentinel, which Pop would
	// otherwise misread as FINISHED. See spec.md §3 invariant 6.
	ErrPayloadCollidesWithSeal = errors.New("qpage: payload's first byte collides with the page-full sentinel (0xFD)")

	// ErrMalformedFrame is the error accompanying StatusError from Pop: a
	// fatal invariant violation (spec.md §7), not a retryable condition.
	ErrMalformedFrame = errors.New("qpage: malformed message frame")

	// ErrClosed is returned by Push/Pop once Close has unmapped the page.
	ErrClosed = errors.New("qpage: page is closed")
)
