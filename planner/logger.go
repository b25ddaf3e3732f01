package planner

import "github.com/sirupsen/logrus"

// logger is a thin wrapper around a logrus.FieldLogger that gates debug
// output behind a flag, the same shape as the teacher's root-package
// Logger (which wrapped the stdlib "log" package behind a debug bool) —
// here backed by logrus so worker and swap events carry structured fields.
type logger struct {
	entry *logrus.Entry
	debug bool
}

func newLogger(debug bool) *logger {
	return &logger{entry: logrus.WithField("component", "planner"), debug: debug}
}

func (l *logger) infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logger) warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logger) debugf(format string, args ...interface{}) {
	if l.debug {
		l.entry.Debugf(format, args...)
	}
}

func (l *logger) errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
