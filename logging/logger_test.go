package logging

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestLogWritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	l.Logf("hello")
	l.Logf("trade %d @ %d", 5, 100)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	ts, msg, ok := strings.Cut(lines[0], " ")
	if !ok {
		t.Fatalf("malformed line: %q", lines[0])
	}
	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		t.Errorf("timestamp %q is not an integer", ts)
	}
	if msg != "hello" {
		t.Errorf("message = %q, want hello", msg)
	}
	if !strings.HasSuffix(lines[1], "trade 5 @ 100") {
		t.Errorf("formatted message wrong: %q", lines[1])
	}

	if l.MessagesLogged() != 2 {
		t.Errorf("MessagesLogged = %d, want 2", l.MessagesLogged())
	}
}

func TestOversizeMessageTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	l.Logf("%s", strings.Repeat("x", 1000))
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, _ := os.ReadFile(path)
	_, msg, _ := strings.Cut(strings.TrimSpace(string(data)), " ")
	if len(msg) != MaxMessageSize {
		t.Errorf("message length = %d, want %d", len(msg), MaxMessageSize)
	}
}

func TestAcceptedPlusDroppedIsTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	l, err := OpenSize(path, 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	const n = 10_000
	for i := 0; i < n; i++ {
		l.Logf("entry %d", i)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := l.MessagesLogged() + l.MessagesDropped(); got != n {
		t.Errorf("logged+dropped = %d, want %d", got, n)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if uint64(len(lines)) != l.MessagesLogged() {
		t.Errorf("file has %d lines, logger accepted %d", len(lines), l.MessagesLogged())
	}
}

func TestOpenFailurePropagates(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestNonPowerOfTwoRingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two ring size")
		}
	}()
	OpenSize(filepath.Join(t.TempDir(), "x.log"), 100)
}
