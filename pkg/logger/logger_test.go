package logger

import "testing"

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NewNopLogger()
	child := l.With("pnr", "1234567890")
	if child == nil {
		t.Fatal("With returned nil")
	}
	child.Info("parsed", "passengers", 2)
	child.Debug("ignored")
}

func TestNewLoggerWithLevelFallsBack(t *testing.T) {
	l := NewLoggerWithLevel("not-a-level")
	if l == nil || l.logger == nil {
		t.Fatal("expected a usable logger for an unknown level")
	}
	if !l.logger.Desugar().Core().Enabled(0) {
		t.Error("info level should be enabled after fallback")
	}
	if l.logger.Desugar().Core().Enabled(-1) {
		t.Error("debug level should be disabled after fallback")
	}
}
