// Package elapsed reports seconds elapsed since the first call in the
// process.
//
// The first call to Seconds pins a process-wide reference instant. Every call,
// the first one included, returns the current reading minus that reference.
// The clock source is chosen once per build (see DefaultSource) and may be
// overridden with Select before the reference is pinned.
package elapsed

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStarted is returned by Select once the reference instant is pinned
var ErrStarted = errors.New("reference instant already captured")

// reader takes one reading from a source
type reader func(Source) (float64, error)

// clock holds the reference instant and the source it was read from
type clock struct {
	mu   sync.Mutex // guards src until started
	once sync.Once
	src  Source
	read reader

	ref     atomic.Uint64 // float64 bits of the reference reading
	refOK   atomic.Bool   // false until a reference read has succeeded
	started atomic.Bool

	last     atomic.Uint64 // float64 bits of the last value returned
	failures atomic.Uint64
	lastErr  atomic.Pointer[error]
}

func newClock(src Source, read reader) *clock {
	return &clock{src: src, read: read}
}

// std is the process-wide clock
var std = newClock(DefaultSource, Read)

// Seconds returns seconds elapsed since the first call to Seconds in this
// process. The first call returns a value close to zero.
//
// Clock read failures are never surfaced: if the reference read fails, the
// first successful reading becomes the reference, and a failed current read
// returns the previous result.
func Seconds() float64 {
	return std.seconds()
}

// Duration is Seconds as a time.Duration
func Duration() time.Duration {
	return time.Duration(std.seconds() * float64(time.Second))
}

// Select replaces the build's default source. It must be called before the
// first Seconds call.
func Select(src Source) error {
	return std.selectSource(src)
}

// Active returns the source Seconds reads from
func Active() Source {
	return std.source()
}

// Started reports whether the reference instant has been captured
func Started() bool {
	return std.started.Load()
}

// Reference returns the raw reference reading, in source units. It reports
// false until a reference read has succeeded.
func Reference() (float64, bool) {
	return std.reference()
}

// Failures returns how many clock reads have failed
func Failures() uint64 {
	return std.failures.Load()
}

// LastError returns the most recent clock read error, if any
func LastError() error {
	return std.lastError()
}

func (c *clock) seconds() float64 {
	c.once.Do(c.capture)

	now, err := c.read(c.src)
	if err != nil {
		c.fail(err)
		return math.Float64frombits(c.last.Load())
	}

	if !c.refOK.Load() {
		c.adopt(now)
	}

	v := now - math.Float64frombits(c.ref.Load())
	if v < 0 {
		// lost an adopt race to a later reading
		v = 0
	}
	c.last.Store(math.Float64bits(v))
	return v
}

// capture pins the reference. If the read fails the reference stays unset
// and the first successful reading becomes the reference instead.
func (c *clock) capture() {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, err := c.read(c.src)
	if err != nil {
		c.fail(err)
	} else {
		c.ref.Store(math.Float64bits(ref))
		c.refOK.Store(true)
	}
	c.started.Store(true)
}

func (c *clock) adopt(now float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.refOK.Load() {
		c.ref.Store(math.Float64bits(now))
		c.refOK.Store(true)
	}
}

func (c *clock) fail(err error) {
	c.failures.Add(1)
	c.lastErr.Store(&err)
}

func (c *clock) selectSource(src Source) error {
	if _, err := c.read(src); err != nil {
		return fmt.Errorf("select %v: %w", src, errors.Join(ErrUnavailable, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.Load() {
		return fmt.Errorf("select %v: %w", src, ErrStarted)
	}
	c.src = src
	return nil
}

func (c *clock) source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src
}

func (c *clock) reference() (float64, bool) {
	if !c.refOK.Load() {
		return 0, false
	}
	return math.Float64frombits(c.ref.Load()), true
}

func (c *clock) lastError() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}
