package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ByLCY/bihua/core"
)

func TestLogUsesSeverityLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	n := Log{Logger: logger}

	n.Notify("Please enter characters first", core.SeverityWarning)
	n.Notify("SVG downloaded successfully!", core.SeveritySuccess)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, `msg="Please enter characters first"`) {
		t.Fatalf("warning not logged as WARN: %s", out)
	}
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "severity=success") {
		t.Fatalf("success not logged as INFO: %s", out)
	}
}

func TestRecorderAndMulti(t *testing.T) {
	var a, b Recorder
	if _, ok := a.Last(); ok {
		t.Fatalf("empty recorder should have no last message")
	}
	var calls int
	m := Multi{&a, nil, &b, Func(func(string, core.Severity) { calls++ })}
	m.Notify("Animation complete!", core.SeveritySuccess)
	m.Notify("Animation error occurred", core.SeverityError)

	if got := a.Messages(); len(got) != 2 || got[0].Text != "Animation complete!" {
		t.Fatalf("unexpected messages %+v", got)
	}
	last, ok := b.Last()
	if !ok || last.Severity != core.SeverityError {
		t.Fatalf("unexpected last message %+v", last)
	}
	if calls != 2 {
		t.Fatalf("expected func notifier to be called twice, got %d", calls)
	}
}
