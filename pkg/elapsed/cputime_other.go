//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !solaris

package elapsed

import (
	"fmt"
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

var (
	selfOnce sync.Once
	self     *process.Process
	selfErr  error
)

// cpuTime returns user+system CPU seconds consumed by the process
func cpuTime() (float64, error) {
	selfOnce.Do(func() {
		self, selfErr = process.NewProcess(int32(os.Getpid()))
	})
	if selfErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, selfErr)
	}

	times, err := self.Times()
	if err != nil {
		return 0, fmt.Errorf("process times: %w", err)
	}
	return times.User + times.System, nil
}
