package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"": LevelOff, "off": LevelOff, "error": LevelError, "session": LevelSession,
		"VALUE": LevelValue, "debug": LevelDebug,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("invalid level accepted")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelSession.ShouldEmit(ScopeValue) || !LevelSession.ShouldEmit(ScopeSession) {
		t.Fatal("session level filters wrong scopes")
	}
	if LevelValue.ShouldEmit(ScopePrinter) || !LevelValue.ShouldEmit(ScopeValue) {
		t.Fatal("value level filters wrong scopes")
	}
	if !LevelDebug.ShouldEmit(ScopeRead) || LevelError.ShouldEmit(ScopeSession) {
		t.Fatal("debug and error levels filter wrong scopes")
	}
}

func TestStreamTextFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	span := Begin(tr, ScopeValue, "f_inline", 0)
	span.WithExtra("type", "future_state")
	Point(tr, ScopePrinter, "future_state.lookup", "missing")
	span.End("ok")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "[value  ] → f_inline") {
		t.Fatalf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "• future_state.lookup (missing)") {
		t.Fatalf("point line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "← f_inline (ok)") || !strings.HasSuffix(lines[2], "{type=future_state}") {
		t.Fatalf("end line = %q", lines[2])
	}
}

func TestStreamNDJSONAndFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelSession, FormatNDJSON)
	Point(tr, ScopeSession, "load", "demo.fpi")
	Point(tr, ScopeRead, "read", "dropped")

	var ev map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("expected exactly one JSON event: %v\n%s", err, buf.String())
	}
	if ev["name"] != "load" || ev["scope"] != "session" || ev["kind"] != "point" {
		t.Fatalf("event = %v", ev)
	}
}

func TestRingWrapsAndDumps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopePrinter, name, "")
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("Snapshot() = %+v", got)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# 1 earlier event(s) dropped\n") || strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
	if ring.Len() != 2 || ring.Dropped() != 1 || ring.Count(ScopePrinter) != 2 {
		t.Fatalf("Len=%d Dropped=%d", ring.Len(), ring.Dropped())
	}
}

func TestSpanEndsOnce(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	span := Begin(ring, ScopeSession, "print", 0)
	span.Point(ScopeRead, "read", "0x10")
	span.Fail(errors.New("boom"))
	if d := span.End("again"); d != 0 {
		t.Fatalf("second End returned %v", d)
	}
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("events = %+v", events)
	}
	if events[1].ParentID != span.ID() || events[1].Kind != KindPoint {
		t.Fatalf("point = %+v", events[1])
	}
	if events[2].Detail != "failed: boom" {
		t.Fatalf("end detail = %q", events[2].Detail)
	}
}

func TestFilteredSpanIsInert(t *testing.T) {
	ring := NewRingTracer(8, LevelSession)
	span := Begin(NewStreamTracer(&bytes.Buffer{}, LevelSession, FormatText), ScopeRead, "read", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("filtered span must be inert")
	}
	span.WithExtra("k", "v").Point(ScopeSession, "x", "")
	if ring.Len() != 0 {
		t.Fatal("inert span emitted")
	}
}

func TestFormatFor(t *testing.T) {
	if FormatFor("t.ndjson", FormatAuto) != FormatNDJSON || FormatFor("t.log", FormatAuto) != FormatText {
		t.Fatal("auto format not resolved from path")
	}
	if FormatFor("t.ndjson", FormatText) != FormatText {
		t.Fatal("explicit format overridden")
	}
}

func TestNewModes(t *testing.T) {
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr.Enabled() {
		t.Fatalf("off: %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeSession, "x", "")
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("both mode returned %T", tr)
	}
	ring, ok := multi.Ring()
	if !ok || len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Fatal("both mode must stream and record")
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatal("invalid mode accepted")
	}
}

func TestContextPropagation(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer should be Nop")
	}
	parent := Begin(ring, ScopeSession, "print", 0)
	ctx = WithSpan(ctx, parent)
	child := Begin(FromContext(ctx), ScopeValue, "f_empty", CurrentSpan(ctx))
	child.End("")
	parent.End("")
	events := ring.Snapshot()
	if events[1].ParentID != parent.ID() {
		t.Fatalf("child parent = %d, want %d", events[1].ParentID, parent.ID())
	}
}
