package observ

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load sample.fpi")
	tm.End(load, "3 symbols")
	tm.End(42, "ignored")
	render := tm.Begin("render")
	tm.End(render, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "load sample.fpi" || report.Phases[0].Note != "3 symbols" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Fatal("total shorter than a phase")
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("load"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 8 {
		t.Fatalf("phases = %d", got)
	}
}

func TestWriteSummary(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("open"), "note")
	var buf bytes.Buffer
	if err := tm.WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "timings:\n  open") || !strings.Contains(out, "// note") || !strings.Contains(out, "  total") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if (&Timer{}).Report().Phases != nil {
		t.Fatal("empty timer should report no phases")
	}
}
