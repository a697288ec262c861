//go:build linux || darwin || freebsd || netbsd || openbsd

package qpage

import "golang.org/x/sys/unix"

// adviseSequential hints that the arena will be scanned sequentially by
// readers and appended sequentially by writers, so the kernel can
// prefetch more aggressively. Best-effort: failures are ignored, matching
// spec.md §9's characterization of madvise as an optional hint rather
// than a correctness requirement.
func adviseSequential(data []byte) {
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
