package ps

import (
	"bytes"
	"strings"
	"testing"
)

// TestWriterCounts tests byte and page counting
func TestWriterCounts(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.WriteString("hello\n")
	w.Printf("%d %d\n", 1, 2)
	if w.Written() != int64(len("hello\n1 2\n")) {
		t.Errorf("Written = %d, expected %d", w.Written(), len("hello\n1 2\n"))
	}

	if n := w.BeginPage("(1)"); n != 1 {
		t.Errorf("BeginPage = %d, expected 1", n)
	}
	if n := w.BeginPage("(2)"); n != 2 {
		t.Errorf("BeginPage = %d, expected 2", n)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if !strings.Contains(buf.String(), "%%Page: (2) 2\n") {
		t.Errorf("Missing page comment in output: %q", buf.String())
	}
}

// TestCopyRange tests plain range copying
func TestCopyRange(t *testing.T) {
	in := strings.NewReader("abcdefghij")
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.CopyRange(in, 2, 7); err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}
	w.Flush()
	if buf.String() != "cdefg" {
		t.Errorf("CopyRange wrote %q, expected %q", buf.String(), "cdefg")
	}
	if w.Written() != 5 {
		t.Errorf("Written = %d, expected 5", w.Written())
	}
}

// TestCopyRangeShort tests that a short copy is an error
func TestCopyRangeShort(t *testing.T) {
	in := strings.NewReader("short")
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.CopyRange(in, 0, 100); err == nil {
		t.Errorf("CopyRange past EOF succeeded, expected error")
	}
}

// TestCopyRangeFiltered tests line filtering during copy
func TestCopyRangeFiltered(t *testing.T) {
	input := "keep1\ndrop1\nkeep2\ndrop2\nkeep3\n"
	in := strings.NewReader(input)
	var buf bytes.Buffer
	w := NewWriter(&buf)

	skip := []int64{
		int64(strings.Index(input, "drop1")),
		int64(strings.Index(input, "drop2")),
	}
	if err := w.CopyRangeFiltered(in, 0, int64(len(input)), skip); err != nil {
		t.Fatalf("CopyRangeFiltered failed: %v", err)
	}
	w.Flush()
	if buf.String() != "keep1\nkeep2\nkeep3\n" {
		t.Errorf("CopyRangeFiltered wrote %q", buf.String())
	}
}

// TestCopyRangeFilteredOutside tests that skips outside the range are ignored
func TestCopyRangeFilteredOutside(t *testing.T) {
	input := "aaa\nbbb\n"
	in := strings.NewReader(input)
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.CopyRangeFiltered(in, 0, 4, []int64{4}); err != nil {
		t.Fatalf("CopyRangeFiltered failed: %v", err)
	}
	w.Flush()
	if buf.String() != "aaa\n" {
		t.Errorf("CopyRangeFiltered wrote %q, expected %q", buf.String(), "aaa\n")
	}
}

// TestCopyUntilPrefix tests the bounded line copy
func TestCopyUntilPrefix(t *testing.T) {
	input := "one\ntwo\nPStoPSxform concat\nbody\n"
	in := strings.NewReader(input)
	var buf bytes.Buffer
	w := NewWriter(&buf)

	pos, err := w.CopyUntilPrefix(in, 0, int64(len(input)), "PStoPSxform")
	if err != nil {
		t.Fatalf("CopyUntilPrefix failed: %v", err)
	}
	w.Flush()
	if buf.String() != "one\ntwo\n" {
		t.Errorf("CopyUntilPrefix wrote %q", buf.String())
	}
	want := int64(strings.Index(input, "body"))
	if pos != want {
		t.Errorf("CopyUntilPrefix pos = %d, expected %d", pos, want)
	}
}

// TestCopyUntilPrefixMissing tests running into the limit
func TestCopyUntilPrefixMissing(t *testing.T) {
	input := "one\ntwo\n"
	in := strings.NewReader(input)
	var buf bytes.Buffer
	w := NewWriter(&buf)

	pos, err := w.CopyUntilPrefix(in, 0, int64(len(input)), "PStoPSxform")
	if err != nil {
		t.Fatalf("CopyUntilPrefix failed: %v", err)
	}
	w.Flush()
	if pos != int64(len(input)) {
		t.Errorf("CopyUntilPrefix pos = %d, expected %d", pos, len(input))
	}
	if buf.String() != input {
		t.Errorf("CopyUntilPrefix wrote %q, expected all input", buf.String())
	}
}
