package logbus

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBusRingBufferKeepsLatest(t *testing.T) {
	b := New(2)
	b.Log("info", "one", nil)
	b.Log("info", "two", nil)
	b.Log("info", "three", nil)

	got := b.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Data.(LogData).Msg != "two" || got[1].Data.(LogData).Msg != "three" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestSinkFiltersByLevelAndSortsFields(t *testing.T) {
	b := New(10)
	b.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	var buf bytes.Buffer
	b.AddSink(&buf, "info", false)

	b.Log("debug", "hidden", nil)
	b.Log("warn", "推送失败", map[string]any{"channel": "pushplus", "error": "boom"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
	want := "2024-05-01 08:00:00 WARN 推送失败 channel=pushplus error=boom\n"
	if out != want {
		t.Fatalf("unexpected line\nwant %q\ngot  %q", want, out)
	}
	if len(b.Snapshot()) != 2 {
		t.Fatalf("filtered lines must still be buffered")
	}
}

func TestSinkColor(t *testing.T) {
	b := New(10)
	var buf bytes.Buffer
	b.AddSink(&buf, "debug", true)
	b.Log("error", "boom", nil)
	if !strings.Contains(buf.String(), "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected colored level, got %q", buf.String())
	}
}

func TestConsoleColorModes(t *testing.T) {
	if !ConsoleColor("always", nil) {
		t.Fatalf("always should force color")
	}
	if ConsoleColor("never", nil) {
		t.Fatalf("never should disable color")
	}
	if ConsoleColor("auto", nil) {
		t.Fatalf("auto without a file should not color")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var b *Bus
	b.Log("info", "ignored", nil)
}
