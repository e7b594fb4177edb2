//go:build windows

package repair

import (
	"os"

	"golang.org/x/sys/windows"
)

// syncData flushes the file's data to stable storage using FlushFileBuffers.
func syncData(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
