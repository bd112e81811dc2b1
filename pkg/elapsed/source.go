package elapsed

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Source identifies the clock a reading is taken from
type Source int

const (
	// Monotonic is the Go runtime monotonic clock. Never moves backward.
	Monotonic Source = iota
	// Wall is the system wall clock. Follows clock adjustments.
	Wall
	// CPUTime is user+system processor time consumed by this process.
	CPUTime
)

var (
	// ErrUnknownSource is returned by ParseSource for unrecognized names
	ErrUnknownSource = errors.New("unknown clock source")
	// ErrUnavailable is returned when a source cannot be read on this platform
	ErrUnavailable = errors.New("clock source unavailable")
)

// epoch anchors monotonic readings; only differences are meaningful.
var epoch = time.Now()

func (s Source) String() string {
	switch s {
	case Monotonic:
		return "monotonic"
	case Wall:
		return "wall"
	case CPUTime:
		return "cputime"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource parses a source name, case-insensitively
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "monotonic", "mono":
		return Monotonic, nil
	case "wall", "wallclock":
		return Wall, nil
	case "cputime", "cpu":
		return CPUTime, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// Sources returns every known source in preference order
func Sources() []Source {
	return []Source{Monotonic, Wall, CPUTime}
}

// Available reports whether a reading can be taken from s right now
func (s Source) Available() bool {
	_, err := Read(s)
	return err == nil
}

// Read takes one raw reading from s, in seconds. The origin is source
// specific, so only differences between readings of the same source mean
// anything. Read never touches the process reference instant.
func Read(s Source) (float64, error) {
	switch s {
	case Monotonic:
		return time.Since(epoch).Seconds(), nil
	case Wall:
		return float64(time.Now().UnixNano()) / 1e9, nil
	case CPUTime:
		return cpuTime()
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownSource, s)
	}
}
