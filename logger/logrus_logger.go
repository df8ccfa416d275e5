package logger

import "github.com/sirupsen/logrus"

// LogrusLogger is a Logger implementation backed by logrus, giving
// structured, leveled output with persistent fields carried through
// With/WithComponent.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger returns a Logger backed by the given *logrus.Logger. If l
// is nil, logrus.StandardLogger() is used.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) fields(keysAndValues []any) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (l *LogrusLogger) Debugw(msg string, keysAndValues ...any) {
	l.entry.WithFields(l.fields(keysAndValues)).Debug(msg)
}

func (l *LogrusLogger) Infow(msg string, keysAndValues ...any) {
	l.entry.WithFields(l.fields(keysAndValues)).Info(msg)
}

func (l *LogrusLogger) Warnw(msg string, keysAndValues ...any) {
	l.entry.WithFields(l.fields(keysAndValues)).Warn(msg)
}

func (l *LogrusLogger) Errorw(msg string, keysAndValues ...any) {
	l.entry.WithFields(l.fields(keysAndValues)).Error(msg)
}

// With adds key-value pairs to the logger's persistent context.
func (l *LogrusLogger) With(keysAndValues ...any) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(l.fields(keysAndValues))}
}

// WithComponent adds a "component" field to the logger's persistent context.
func (l *LogrusLogger) WithComponent(name string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", name)}
}
