//go:build darwin

package repair

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncData flushes the file's data to stable storage.
//
// On macOS, F_FULLFSYNC pushes past the drive cache. Some filesystems reject
// it, in which case plain fsync is used.
func syncData(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0); err == nil {
		return nil
	}
	return unix.Fsync(int(f.Fd()))
}
