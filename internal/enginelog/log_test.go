package enginelog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogfDiscardsWithNoWriter(t *testing.T) {
	SetWriter(nil)
	Logf("should not panic or write anywhere: %d", 1)
}

func TestLogfWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)

	Logf("hello %s", "world")
	if got := buf.String(); !strings.Contains(got, "hello world") {
		t.Fatalf("buf = %q, want it to contain %q", got, "hello world")
	}
}

func TestLogTickRespectsInterval(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetTickInterval(5)
	defer func() {
		SetWriter(nil)
		SetTickInterval(1)
	}()

	LogTick(3, 1, 1)
	if buf.Len() != 0 {
		t.Fatalf("LogTick(3) logged with interval=5: %q", buf.String())
	}

	LogTick(5, 1, 1)
	if !strings.Contains(buf.String(), "Tick 5") {
		t.Fatalf("LogTick(5) did not log at the interval boundary: %q", buf.String())
	}
}

func TestLogTickDisabledWhenIntervalZero(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetTickInterval(0)
	defer func() {
		SetWriter(nil)
		SetTickInterval(1)
	}()

	LogTick(0, 1, 1)
	LogTick(10, 1, 1)
	if buf.Len() != 0 {
		t.Fatalf("LogTick logged with interval=0 (disabled): %q", buf.String())
	}
}

func TestLogWorkerEventFormatsWithAndWithoutDetail(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)

	LogWorkerEvent(2, "launch-failed", "exec: no such file")
	if !strings.Contains(buf.String(), "colony=2 launch-failed: exec: no such file") {
		t.Fatalf("buf = %q, missing expected detail line", buf.String())
	}

	buf.Reset()
	LogWorkerEvent(2, "reload", "")
	if !strings.Contains(buf.String(), "colony=2 reload") || strings.Contains(buf.String(), ":") {
		t.Fatalf("buf = %q, want no trailing colon when detail is empty", buf.String())
	}
}

func TestLogVictoryFormatsColonyAndTick(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)

	LogVictory(3, 42)
	if !strings.Contains(buf.String(), "VICTORY: colony 3 at tick 42") {
		t.Fatalf("buf = %q, missing expected victory line", buf.String())
	}
}
