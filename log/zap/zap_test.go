package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/orbital"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("switch started", orbital.Fields{"from": orbital.Orbit0})
	l.Error("switch lock release failed", orbital.Fields{"err": errors.New("boom"), "lock": "orbital-cache:switching"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("levels: %v %v", entries[0].Level, entries[1].Level)
	}
	ctx := entries[1].ContextMap()
	if ctx["err"] != "boom" || ctx["lock"] != "orbital-cache:switching" {
		t.Fatalf("fields: %v", ctx)
	}
	// fields are emitted in key order
	if entries[1].Context[0].Key != "err" || entries[1].Context[1].Key != "lock" {
		t.Fatalf("field order: %v", entries[1].Context)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	New(nil).Warn("ignored", orbital.Fields{"k": 1})
}
