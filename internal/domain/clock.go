package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
var clock = clockwork.NewRealClock()

// brasilia is UTC-3 year-round; Brazil abolished daylight saving in 2019.
var brasilia = time.FixedZone("BRT", -3*60*60)

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// BulletinDate returns today's date in Brasília time as YYYY-MM-DD, the
// stamp used for archived exports.
func BulletinDate() string {
	return clock.Now().In(brasilia).Format(time.DateOnly)
}
