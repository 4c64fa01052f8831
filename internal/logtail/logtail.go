package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path.
// A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	t := New(path, maxLines)
	return t.Refresh()
}

// Tail follows a log file, keeping its last lines in memory. Each Refresh
// reads only what was appended since the previous call.
type Tail struct {
	path    string
	max     int
	offset  int64
	partial string
	lines   []string
}

// New returns a Tail keeping up to maxLines of path.
func New(path string, maxLines int) *Tail {
	if maxLines < 0 {
		maxLines = 0
	}
	return &Tail{path: path, max: maxLines}
}

// Lines returns the lines collected so far, oldest first.
func (t *Tail) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Refresh reads new data from the file and returns the current window.
// A file that shrank is treated as rotated and read from the start.
func (t *Tail) Refresh() ([]string, error) {
	if t.max == 0 || strings.TrimSpace(t.path) == "" {
		return nil, nil
	}
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t.Lines(), nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < t.offset {
		t.offset = 0
		t.partial = ""
		t.lines = nil
	}
	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		chunk, err := reader.ReadBytes('\n')
		t.offset += int64(len(chunk))
		if len(chunk) > 0 {
			if chunk[len(chunk)-1] == '\n' {
				t.push(t.partial + string(bytes.TrimRight(chunk, "\r\n")))
				t.partial = ""
			} else {
				t.partial += string(chunk)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
	}
	return t.Lines(), nil
}

func (t *Tail) push(line string) {
	t.lines = append(t.lines, line)
	if over := len(t.lines) - t.max; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
}

// Level is the severity of a console formatted log line.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = []struct {
	tag   string
	level Level
}{
	{" TRC ", LevelDebug},
	{" DBG ", LevelDebug},
	{" INF ", LevelInfo},
	{" WRN ", LevelWarn},
	{" ERR ", LevelError},
	{" FTL ", LevelError},
	{" PNC ", LevelError},
}

// LevelOf detects the level tag zerolog's console writer puts after the
// timestamp.
func LevelOf(line string) Level {
	padded := " " + line + " "
	for _, lt := range levelTags {
		if strings.Contains(padded, lt.tag) {
			return lt.level
		}
	}
	return LevelUnknown
}
