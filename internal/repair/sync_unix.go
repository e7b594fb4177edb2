//go:build linux || freebsd

package repair

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncData flushes the file's data to stable storage.
//
// On Linux/FreeBSD, fdatasync() is enough: the patch never changes the size.
func syncData(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
