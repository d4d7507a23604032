package ps

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSequence emits a document whose pages are the listed input pages
// in order, renumbered sequentially. A negative index inserts a blank
// page. Unlike the imposition engine, no transforms are applied and no
// procset is injected; bodies are copied verbatim.
func WriteSequence(cfg *Config, in io.ReadSeeker, doc *DocumentInfo, out io.Writer, seq []int) error {
	w := NewWriter(out)
	pages := doc.NumPages()

	if doc.PagesComment != 0 {
		if err := w.CopyRange(in, 0, doc.PagesComment); err != nil {
			return err
		}
		w.Printf("%%%%Pages: %d 0\n", len(seq))
		after, err := lineEnd(in, doc.PagesComment)
		if err != nil {
			return w.fail("read error at offset %d: %v", doc.PagesComment, err)
		}
		if err := w.CopyRange(in, after, doc.HeaderEnd); err != nil {
			return err
		}
	} else if err := w.CopyRange(in, 0, doc.HeaderEnd); err != nil {
		return err
	}

	if err := w.CopyRange(in, doc.HeaderEnd, doc.EndSetup); err != nil {
		return err
	}

	for _, p := range seq {
		if p >= 0 && p < pages {
			bodyStart, label, err := seekPage(in, doc, p)
			if err != nil {
				return err
			}
			w.BeginPage(label)
			e := doc.PageOffsets[p+1]
			if err := w.CopyRange(in, bodyStart, e); err != nil {
				return err
			}
			cfg.notef("[%d] ", p+1)
		} else {
			w.BeginPage("*")
			w.WriteString("showpage\n")
			cfg.notef("[*] ")
		}
	}

	if err := w.CopyToEOF(in, doc.PageOffsets[pages]); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cfg.notef("\nWrote %d pages, %d bytes\n", w.Pages(), w.Written())
	return nil
}

// ParseSelection parses a psselect page list against a document of the
// given length. Each comma-separated item is a page number, a range
// "first-last" with either bound optional, or "_" alone for an
// inserted blank. A number prefixed with "_" counts from the end of
// the document, _1 being the last page. The result is a list of
// 0-based indices with -1 for blanks.
func ParseSelection(s string, pages int) ([]int, error) {
	var seq []int
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("empty page range")
		}
		if item == "_" {
			seq = append(seq, -1)
			continue
		}
		first, rest, err := selectionBound(item, 1, pages)
		if err != nil {
			return nil, err
		}
		last := first
		if strings.HasPrefix(rest, "-") {
			last, rest, err = selectionBound(rest[1:], pages, pages)
			if err != nil {
				return nil, err
			}
		}
		if rest != "" {
			return nil, fmt.Errorf("bad page range '%s'", item)
		}
		if first < 1 || first > pages || last < 1 || last > pages {
			return nil, fmt.Errorf("page range '%s' out of bounds (1-%d)", item, pages)
		}
		if first <= last {
			for p := first; p <= last; p++ {
				seq = append(seq, p-1)
			}
		} else {
			for p := first; p >= last; p-- {
				seq = append(seq, p-1)
			}
		}
	}
	return seq, nil
}

// selectionBound parses one bound of a range item and returns it with
// the unconsumed rest. An absent bound yields def; an "_" prefix
// counts from the end of the document.
func selectionBound(s string, def, pages int) (int, string, error) {
	fromEnd := false
	i := 0
	if i < len(s) && s[i] == '_' {
		fromEnd = true
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		if fromEnd {
			return 0, s, fmt.Errorf("bad page number '%s'", s)
		}
		return def, s, nil
	}
	n, err := strconv.Atoi(s[i:j])
	if err != nil || n == 0 {
		return 0, s, fmt.Errorf("bad page number '%s'", s)
	}
	if fromEnd {
		n = pages + 1 - n
	}
	return n, s[j:], nil
}

// FilterParity keeps the selection entries whose 1-based input page
// number is even or odd; blanks are kept.
func FilterParity(seq []int, even bool) []int {
	var out []int
	for _, p := range seq {
		if p < 0 {
			out = append(out, p)
			continue
		}
		if ((p+1)%2 == 0) == even {
			out = append(out, p)
		}
	}
	return out
}

// Reverse reverses a selection in place and returns it.
func Reverse(seq []int) []int {
	for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = seq[j], seq[i]
	}
	return seq
}

// BookSequence computes the psbook page order: pages rearranged into
// printing signatures of the given size (a multiple of four; zero means
// one signature covering the whole document). Indices past the document
// are blanks.
func BookSequence(pages, signature int) ([]int, error) {
	if signature < 0 || signature%4 != 0 {
		return nil, fmt.Errorf("signature size must be a positive multiple of 4")
	}
	if signature == 0 {
		signature = ((pages + 3) / 4) * 4
	}
	maxPage := ((pages + signature - 1) / signature) * signature
	if maxPage == 0 {
		return nil, nil
	}

	seq := make([]int, maxPage)
	for current := 0; current < maxPage; current++ {
		base := current - current%signature
		var actual int
		switch current % 4 {
		case 0, 3:
			actual = base + signature - 1 - (current%signature)/2
		case 1, 2:
			actual = base + (current%signature)/2
		}
		if actual < pages {
			seq[current] = actual
		} else {
			seq[current] = -1
		}
	}
	return seq, nil
}
