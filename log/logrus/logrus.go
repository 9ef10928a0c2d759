// Package logrus adapts a logrus entry to orbital.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/orbital"
)

var _ orbital.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l with a "component=orbital" field.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "orbital")}
}

func (l Logger) Debug(msg string, f orbital.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f orbital.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f orbital.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f orbital.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
