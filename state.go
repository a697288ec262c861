package qpage

import (
	"sync/atomic"
	"unsafe"
)

// wordBits is W, the bit width of each header word. A reimplementation on
// a native word size other than 64 bits would change only this file.
const wordBits = 64

// wordBytes is the on-disk size of one header word; see the offset table
// headerSize is built from.
const wordBytes = wordBits / 8

// magic is a single unit in the writer-count field: one writer in flight.
const magic = uint64(1) << (wordBits - 8)

// mask extracts the write-index (low W-8 bits) from a packed state word.
const mask = magic - 1

// headerSize is 3*wordBytes: ready, state, safe_end.
const headerSize = 3 * wordBytes

// readyMagic is stamped into the ready word on first creation of a page
// and checked on every subsequent Open, repurposing the otherwise-unused
// ready field as a word-width/format guard per spec.md §9 open question 5.
const readyMagic = uint64(0x5150414745303100) // "QPAGE01\0"

func loadWord(data []byte, offset int) uint64 {
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(&data[offset])))
}

func storeWord(data []byte, offset int, v uint64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&data[offset])), v)
}

func casWord(data []byte, offset int, old, new uint64) bool {
	return atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(&data[offset])), old, new)
}

func addWord(data []byte, offset int, delta uint64) uint64 {
	return atomic.AddUint64((*uint64)(unsafe.Pointer(&data[offset])), delta)
}

// writeIndex extracts the low bits (next free arena offset) of a state word.
func writeIndex(state uint64) int {
	return int(state & mask)
}

// writersInFlight extracts the high bits (in-flight writer count) of a
// state word. Per spec.md §9 open question 1, this MUST use bitwise-not
// of mask, never logical-not — a logical-not of a nonzero mask is always
// zero, which would make every spin-check trivially pass.
func writersInFlight(state uint64) uint64 {
	return state & ^mask
}

// fetchMaxSafeEnd stores candidate into the safe_end word only if it is
// larger than the current value, via CAS retry. Spec.md §9 open question 3
// flags the source's plain relaxed store as a bug: two racing readers can
// otherwise move safe_end backwards. This is the fix.
func fetchMaxSafeEnd(data []byte, offset int, candidate uint64) {
	for {
		cur := loadWord(data, offset)
		if cur >= candidate {
			return
		}
		if casWord(data, offset, cur, candidate) {
			return
		}
	}
}
