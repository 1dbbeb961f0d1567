package auction

import "time"

// Clock supplies the machine's view of time. Implementations must be
// monotonically non-decreasing; the machine only reads it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
