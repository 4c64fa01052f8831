package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLines(t *testing.T, path string, from, to int, flag int) {
	t.Helper()
	file, err := os.OpenFile(path, flag|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	for i := from; i <= to; i++ {
		fmt.Fprintf(file, "Line %d\n", i)
	}
}

func lineRange(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("Line %d", i))
	}
	return out
}

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	writeLines(t, logPath, 1, 10, os.O_CREATE|os.O_TRUNC)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero keeps nothing", 0, nil},
		{"negative keeps nothing", -1, nil},
		{"partial", 5, lineRange(6, 10)},
		{"exactly all", 10, lineRange(1, 10)},
		{"more than exists", 20, lineRange(1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read = %v, want no lines", got)
	}
}

func TestTailFollowsAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "follow.log")
	writeLines(t, logPath, 1, 3, os.O_CREATE|os.O_TRUNC)

	tail := New(logPath, 4)
	got, err := tail.Refresh()
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if !reflect.DeepEqual(got, lineRange(1, 3)) {
		t.Fatalf("Refresh = %v, want %v", got, lineRange(1, 3))
	}

	writeLines(t, logPath, 4, 6, os.O_APPEND)
	got, err = tail.Refresh()
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if !reflect.DeepEqual(got, lineRange(3, 6)) {
		t.Fatalf("Refresh = %v, want %v", got, lineRange(3, 6))
	}
}

func TestTailHoldsPartialLine(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "partial.log")
	if err := os.WriteFile(logPath, []byte("first\nsec"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tail := New(logPath, 10)
	got, _ := tail.Refresh()
	if !reflect.DeepEqual(got, []string{"first"}) {
		t.Fatalf("Refresh = %v, want [first]", got)
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = file.WriteString("ond\r\n")
	_ = file.Close()

	got, _ = tail.Refresh()
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("Refresh = %v, want [first second]", got)
	}
}

func TestTailRestartsAfterTruncate(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	writeLines(t, logPath, 1, 5, os.O_CREATE|os.O_TRUNC)

	tail := New(logPath, 10)
	if _, err := tail.Refresh(); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	writeLines(t, logPath, 7, 7, os.O_TRUNC)
	got, err := tail.Refresh()
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Line 7"}) {
		t.Fatalf("Refresh = %v, want [Line 7]", got)
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{"2026-01-02T15:04:05Z INF handshake complete version=6.3", LevelInfo},
		{"2026-01-02T15:04:05Z WRN attempt failed step=\"get version\"", LevelWarn},
		{"2026-01-02T15:04:05Z ERR handshake failed", LevelError},
		{"DBG probe ok", LevelDebug},
		{"plain text", LevelUnknown},
		{strings.Repeat("x", 10), LevelUnknown},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.line); got != tt.want {
			t.Fatalf("LevelOf(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
