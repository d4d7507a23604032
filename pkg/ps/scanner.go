package ps

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// DocumentInfo is the structural index of a DSC-conformant PostScript
// file, built by Scan and immutable thereafter. All fields are byte
// offsets into the input; zero means the section was not found.
type DocumentInfo struct {
	// HeaderEnd is the first byte after the header comment block.
	HeaderEnd int64
	// PagesComment is the offset of the header's %%Pages: line.
	PagesComment int64
	// EndSetup is the first byte after the %%EndSetup line, clamped to
	// the start of the first page.
	EndSetup int64
	// BeginProcSet and EndProcSet delimit a previously embedded PStoPS
	// procset, if any.
	BeginProcSet int64
	EndProcSet   int64
	// PageOffsets[i] is the offset of the %%Page: line beginning page i;
	// the final entry is the offset of the trailer.
	PageOffsets []int64
	// SizeHeaders holds the offsets of the header's paper size comments
	// (%%BoundingBox and friends).
	SizeHeaders []int64
}

// NumPages returns the number of pages in the indexed document.
func (d *DocumentInfo) NumPages() int {
	return len(d.PageOffsets) - 1
}

// sizeHeaderKeywords are the header comments replaced when an output
// paper size is set.
var sizeHeaderKeywords = [][]byte{
	[]byte("%%BoundingBox:"),
	[]byte("%%HiResBoundingBox:"),
	[]byte("%%DocumentPaperSizes:"),
	[]byte("%%DocumentMedia:"),
}

// scanner holds the state of one indexing pass.
type scanner struct {
	doc     *DocumentInfo
	nesting int
	trailer int64
	// headerDone is set once HeaderEnd is known; HeaderEnd itself may
	// legitimately be zero.
	headerDone bool
}

// Scan reads the input once and builds its structural index. Embedded
// documents announced by %%BeginDocument, %%BeginBinary or %%BeginFile
// are skipped; mismatched nesting is tolerated.
func Scan(in io.ReadSeeker) (*DocumentInfo, error) {
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("input not seekable: %v", err)
	}

	s := &scanner{doc: &DocumentInfo{}, trailer: -1}
	r := bufio.NewReader(in)
	var off int64
	first := true

	for {
		line, err := r.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read error at offset %d: %v", off, err)
		}
		next := off + int64(len(line))

		if first {
			first = false
			trimmed := bytes.TrimLeft(line, " \t\r\n")
			if len(trimmed) == 0 || trimmed[0] != '%' {
				// Not a PostScript header; everything is body.
				s.doc.HeaderEnd = off
				s.headerDone = true
			}
			// Otherwise this is the %! line; the header continues.
		} else {
			s.classify(line, off, next)
		}
		if s.trailer >= 0 {
			break
		}

		off = next
		if err == io.EOF {
			break
		}
	}

	doc := s.doc
	if s.trailer < 0 {
		end, err := in.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("input not seekable: %v", err)
		}
		s.trailer = end
	}
	doc.PageOffsets = append(doc.PageOffsets, s.trailer)

	if doc.EndSetup == 0 || doc.EndSetup > doc.PageOffsets[0] {
		doc.EndSetup = doc.PageOffsets[0]
	}
	if doc.HeaderEnd > doc.PageOffsets[0] {
		doc.HeaderEnd = doc.PageOffsets[0]
	}

	// Leave the input positioned at the trailer.
	if _, err := in.Seek(s.trailer, io.SeekStart); err != nil {
		return nil, fmt.Errorf("input not seekable: %v", err)
	}
	return doc, nil
}

// classify records one line of the scan. off is the line's offset, next
// the offset of the line after it.
func (s *scanner) classify(line []byte, off, next int64) {
	doc := s.doc

	if !bytes.HasPrefix(line, []byte("%%")) {
		if !s.headerDone {
			doc.HeaderEnd = off
			s.headerDone = true
		}
		return
	}

	if hasKeyword(line, "%%BeginDocument") ||
		hasKeyword(line, "%%BeginBinary") ||
		hasKeyword(line, "%%BeginFile") {
		s.nesting++
		return
	}
	if s.nesting > 0 {
		if hasKeyword(line, "%%EndDocument") ||
			hasKeyword(line, "%%EndBinary") ||
			hasKeyword(line, "%%EndFile") {
			s.nesting--
		}
		return
	}

	switch {
	case hasKeyword(line, "%%Page:"):
		if !s.headerDone {
			doc.HeaderEnd = off
			s.headerDone = true
		}
		doc.PageOffsets = append(doc.PageOffsets, off)
	case hasKeyword(line, "%%Pages:"):
		if !s.headerDone && doc.PagesComment == 0 {
			doc.PagesComment = off
		}
	case isSizeHeader(line):
		if !s.headerDone {
			doc.SizeHeaders = append(doc.SizeHeaders, off)
		}
	case hasKeyword(line, "%%EndComments"), hasKeyword(line, "%%BeginProlog"):
		if !s.headerDone {
			doc.HeaderEnd = next
			s.headerDone = true
		}
	case hasKeyword(line, "%%EndSetup"):
		doc.EndSetup = next
	case hasKeyword(line, "%%BeginProcSet: PStoPS"):
		doc.BeginProcSet = off
	case hasKeyword(line, "%%EndProcSet"):
		if doc.BeginProcSet != 0 && doc.EndProcSet == 0 {
			doc.EndProcSet = next
		}
	case hasKeyword(line, "%%Trailer"), hasKeyword(line, "%%EOF"):
		s.trailer = off
	}
}

// hasKeyword reports whether the line begins with the given DSC keyword.
func hasKeyword(line []byte, keyword string) bool {
	return bytes.HasPrefix(line, []byte(keyword))
}

// isSizeHeader reports whether the line is a paper size header comment.
func isSizeHeader(line []byte) bool {
	for _, kw := range sizeHeaderKeywords {
		if bytes.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}
