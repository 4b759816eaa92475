package lumen

import "testing"

func TestDefaultLoggerDebugToggle(t *testing.T) {
	l := NewDefaultLogger("test", false)
	if l.DebugEnabled() {
		t.Error("debug should start disabled")
	}

	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Error("SetDebug(true) did not enable debug")
	}

	// Must not panic with formatting args.
	l.Debugf("value %d", 42)
	l.Infof("hello %s", "world")
	l.Warnf("warn")
	l.Errorf("err %v", nil)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	if l.DebugEnabled() {
		t.Error("nop logger reports debug enabled")
	}
	l.SetDebug(true)
	if l.DebugEnabled() {
		t.Error("nop logger must stay silent")
	}
	l.Debugf("ignored %d", 1)
	l.Infof("ignored")
	l.Warnf("ignored")
	l.Errorf("ignored")
}
