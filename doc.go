// Package qpage implements the page-level lock-free append log that backs
// an inter-process, multi-producer/multi-consumer broadcast channel.
//
// A Page is a fixed-size region of a regular file, memory-mapped
// MAP_SHARED into every process that participates. Producers reserve a
// byte range with a single atomic fetch-add and commit it with a matching
// fetch-sub; no mutex or kernel wait object sits on the Push or Pop path.
// Readers determine a safe read horizon from the same atomically-accessed
// header word writers use to reserve space.
//
// qpage deliberately does not sequence pages into a ring, allocate new page
// files, or evict old ones — that is the job of the qpage/ring package,
// which treats Page as an opaque building block through the four operations
// in this package (Open, Push, Pop, Close) plus the Status enum.
package qpage
