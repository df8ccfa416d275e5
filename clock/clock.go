// Package clock abstracts away the standard time package so that components
// with suspension points (poll sleeps, acquire-timeouts, GC tickers) can be
// driven deterministically in tests.
package clock

import "time"

// Clock defines an interface for time-related operations.
type Clock interface {
	// Now returns the current local time.
	Now() time.Time

	// Since returns the time elapsed since t (equivalent to Now().Sub(t)).
	Since(t time.Time) time.Duration

	// After waits for the duration to elapse and then sends the current time
	// on the returned channel.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker whose channel delivers ticks at the given
	// period. The duration d must be greater than zero; if not, NewTicker
	// will panic.
	NewTicker(d time.Duration) Ticker

	// NewTimer creates a Timer that sends the current time on its channel
	// after at least duration d.
	NewTimer(d time.Duration) Timer

	// Sleep pauses the calling goroutine for at least the duration d.
	Sleep(d time.Duration)
}

// Ticker wraps time.Ticker for mocking.
type Ticker interface {
	// Chan returns the channel on which ticks are delivered.
	Chan() <-chan time.Time

	// Stop turns off the ticker. It does not close the channel.
	Stop()

	// Reset stops the ticker and resets its period.
	Reset(d time.Duration)
}

// Timer wraps time.Timer for mocking.
type Timer interface {
	// Chan returns the channel on which the expiry time is delivered.
	Chan() <-chan time.Time

	// Stop prevents the Timer from firing. Returns true if it stopped the
	// timer, false if the timer already fired or was stopped.
	Stop() bool

	// Reset changes the timer to expire after duration d.
	Reset(d time.Duration) bool
}

// standardClock implements Clock using the real time package.
type standardClock struct{}

// New returns a Clock implementation backed by Go's standard time package.
func New() Clock {
	return &standardClock{}
}

func (standardClock) Now() time.Time                  { return time.Now() }
func (standardClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (standardClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (standardClock) NewTicker(d time.Duration) Ticker {
	return &standardTicker{ticker: time.NewTicker(d)}
}

func (standardClock) NewTimer(d time.Duration) Timer {
	return &standardTimer{timer: time.NewTimer(d)}
}

func (standardClock) Sleep(d time.Duration) { time.Sleep(d) }

type standardTicker struct{ ticker *time.Ticker }

func (t *standardTicker) Chan() <-chan time.Time { return t.ticker.C }
func (t *standardTicker) Stop()                  { t.ticker.Stop() }
func (t *standardTicker) Reset(d time.Duration)  { t.ticker.Reset(d) }

type standardTimer struct{ timer *time.Timer }

func (t *standardTimer) Chan() <-chan time.Time    { return t.timer.C }
func (t *standardTimer) Stop() bool                { return t.timer.Stop() }
func (t *standardTimer) Reset(d time.Duration) bool { return t.timer.Reset(d) }
