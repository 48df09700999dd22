package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"futprint/internal/sample"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", writeConfig(t), "--env-file", "", "--color", "off"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "futprint.toml")
	if err := os.WriteFile(path, []byte("[render]\nmax_depth = 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func demoImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "futures.fpi")
	if out, err := run(t, "demo", "-o", path); err != nil {
		t.Fatalf("demo: %v\n%s", err, out)
	}
	return path
}

func TestDemoThenPrint(t *testing.T) {
	img := demoImage(t)
	out, err := run(t, "print", "-i", img, "f_inline", "f_invalid")
	if err != nil {
		t.Fatalf("print: %v\n%s", err, out)
	}
	for _, want := range []string{
		"f_inline = " + sample.OuterType + "::operation_state_t",
		"which",
		"empty type: " + sample.Executor,
		"f_invalid = invalid type",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintAllSymbolsAcrossImages(t *testing.T) {
	a, b := demoImage(t), demoImage(t)
	out, err := run(t, "print", "-i", a, "-i", b)
	if err != nil {
		t.Fatalf("print: %v\n%s", err, out)
	}
	if !strings.Contains(out, "# "+a) || !strings.Contains(out, "# "+b) {
		t.Fatalf("missing image headers:\n%s", out)
	}
	for _, sym := range sample.Symbols {
		if strings.Count(out, "\n"+sym+" = ") != 2 {
			t.Fatalf("symbol %s not printed once per image:\n%s", sym, out)
		}
	}
}

func TestPrintRawBypassesPrinters(t *testing.T) {
	img := demoImage(t)
	out, err := run(t, "print", "--raw", "-i", img, "f_direct")
	if err != nil {
		t.Fatalf("print: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "f_direct = "+sample.OuterType+"\n") {
		t.Fatalf("raw output:\n%s", out)
	}
	if strings.Contains(out, "which") {
		t.Fatalf("raw output used the printer:\n%s", out)
	}
}

func TestPrintUnknownSymbolFails(t *testing.T) {
	img := demoImage(t)
	if _, err := run(t, "print", "-i", img, "nope"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestTypesPrefix(t *testing.T) {
	img := demoImage(t)
	out, err := run(t, "types", "-i", img, "--prefix", "futures::detail::maybe_empty")
	if err != nil {
		t.Fatalf("types: %v\n%s", err, out)
	}
	if !strings.Contains(out, sample.MaybeInt) || !strings.Contains(out, sample.MaybeExec) {
		t.Fatalf("types output:\n%s", out)
	}
	if strings.Contains(out, sample.OpState+"\n") {
		t.Fatalf("prefix filter ignored:\n%s", out)
	}
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "const foo<a,b<c>> *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"base:       foo\n", "arg[0]:     a", "arg[1]:     b<c>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := run(t, "parse", "foo<a"); err == nil {
		t.Fatal("expected parse error for unbalanced brackets")
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if payload["tool"] != "futprint" {
		t.Fatalf("payload = %v", payload)
	}
	if _, err := run(t, "version", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTraceRingDumpedOnFailure(t *testing.T) {
	img := demoImage(t)
	tracePath := filepath.Join(t.TempDir(), "trace.log")
	if _, err := run(t, "--trace", tracePath, "--trace-level", "error", "print", "-i", img, "nope"); err == nil {
		t.Fatal("expected failure")
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("trace file: %v", err)
	}
	if !strings.Contains(string(data), "futprint print") {
		t.Fatalf("trace dump lacks the session span:\n%s", data)
	}
}
