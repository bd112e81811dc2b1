//go:build linux || darwin || freebsd || netbsd || openbsd || solaris

package elapsed

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// cpuTime returns user+system CPU seconds consumed by the process
func cpuTime() (float64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("getrusage: %w", err)
	}

	user := float64(ru.Utime.Sec) + float64(ru.Utime.Usec)*1e-6
	sys := float64(ru.Stime.Sec) + float64(ru.Stime.Usec)*1e-6
	return user + sys, nil
}
