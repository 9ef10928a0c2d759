// Package zap adapts a *zap.Logger to orbital.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/orbital"
)

var _ orbital.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New wraps l; a nil l logs nothing.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l}
}

func (z Logger) Debug(msg string, f orbital.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f orbital.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f orbital.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f orbital.Fields) { z.L.Error(msg, fields(f)...) }

// fields converts in key order so output is stable.
func fields(f orbital.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
