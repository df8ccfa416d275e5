package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNoOpLoggerInvokesOverrides(t *testing.T) {
	var gotMsg string
	l := &NoOpLogger{
		InfowFunc: func(msg string, kvs ...any) { gotMsg = msg },
	}
	l.Infow("hello", "k", "v")
	if gotMsg != "hello" {
		t.Fatalf("expected override to be invoked, got %q", gotMsg)
	}

	// Unset levels should not panic.
	l.Debugw("debug")
	l.Warnw("warn")
	l.Errorw("error")
}

func TestNoOpLoggerWithReturnsSelf(t *testing.T) {
	l := NewNoOpLogger()
	if l.With("a", 1) != l {
		t.Fatal("expected With to return the same no-op logger")
	}
	if l.WithComponent("x") != l {
		t.Fatal("expected WithComponent to return the same no-op logger")
	}
}

func TestLogrusLoggerWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	base.SetLevel(logrus.DebugLevel)

	l := NewLogrusLogger(base).WithComponent("locker").With("name", "L1")
	l.Infow("acquired", "type", "writer")

	out := buf.String()
	for _, want := range []string{"acquired", "component=locker", "name=L1", "type=writer"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestLogrusLoggerDefaultsToStandardLogger(t *testing.T) {
	l := NewLogrusLogger(nil)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Debugw("noop-safe-call")
}
