//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package qpage

// adviseSequential is a no-op on platforms without madvise (e.g. Windows).
func adviseSequential(data []byte) {}
