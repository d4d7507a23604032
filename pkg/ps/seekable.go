package ps

import (
	"fmt"
	"io"
	"os"
)

// Spool returns a seekable view of the input. A reader that already
// seeks is passed through; anything else (a pipe, a terminal) is copied
// to an unnamed temporary file first. The returned cleanup must be
// called when the input is no longer needed.
func Spool(r io.Reader) (io.ReadSeeker, func() error, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekCurrent); err == nil {
			return rs, func() error { return nil }, nil
		}
		// An *os.File on a pipe reaches here; spool it like any other
		// stream.
	}

	tmp, err := os.CreateTemp("", "psspool")
	if err != nil {
		return nil, nil, fmt.Errorf("can't create temporary file: %v", err)
	}
	// Unlink immediately; the file lives until closed.
	os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, nil, fmt.Errorf("can't spool input: %v", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, nil, fmt.Errorf("can't rewind temporary file: %v", err)
	}
	return tmp, tmp.Close, nil
}
