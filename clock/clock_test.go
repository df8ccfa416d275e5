package clock

import (
	"testing"
	"time"
)

func TestStandardClockSleepAndNow(t *testing.T) {
	c := New()
	start := c.Now()
	c.Sleep(5 * time.Millisecond)
	if !c.Now().After(start) {
		t.Fatalf("expected time to advance after Sleep")
	}
}

func TestStandardClockAfter(t *testing.T) {
	c := New()
	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for After channel")
	}
}

func TestStandardClockTicker(t *testing.T) {
	c := New()
	ticker := c.NewTicker(time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.Chan():
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
}

func TestFakeAdvanceWakesSleepers(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	done := make(chan struct{})
	go func() {
		f.Sleep(10 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("sleep returned before Advance")
	case <-time.After(20 * time.Millisecond):
	}

	f.Advance(10 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sleep never woke up after Advance")
	}
}

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ticker := f.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Advance(5 * time.Millisecond)
	}()

	select {
	case <-ticker.Chan():
	case <-time.After(time.Second):
		t.Fatal("fake ticker never fired")
	}
}

func TestFakeAfterImmediateForZeroDuration(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	select {
	case <-f.After(0):
	default:
		t.Fatal("expected zero-duration After to be immediately ready")
	}
}
