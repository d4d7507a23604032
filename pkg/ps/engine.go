package ps

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Options configures one imposition run.
type Options struct {
	// Modulo is the input block size; pages are processed in
	// consecutive groups of this many.
	Modulo int
	// PPS is the number of output sheets each specification cycle
	// produces, used for the %%Pages: count.
	PPS int
	// NoBind disables the bind operator in the emitted procset so the
	// wrapped operators stay redefinable.
	NoBind bool
	// Draw strokes the page clip at this line width in points; zero
	// draws nothing.
	Draw float64
	// Specs is the placement list for one modulo block.
	Specs []*PageSpec
}

// Engine drives one re-imposition: it interleaves reads of the indexed
// input with writes of the transformed document.
type Engine struct {
	cfg  *Config
	opts Options
}

// NewEngine creates an engine. A zero or negative Modulo or PPS is
// treated as 1.
func NewEngine(cfg *Config, opts Options) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	if opts.Modulo < 1 {
		opts.Modulo = 1
	}
	if opts.PPS < 1 {
		opts.PPS = 1
	}
	return &Engine{cfg: cfg, opts: opts}
}

// Run emits the transformed document. The input must be the stream the
// index was built from.
func (e *Engine) Run(in io.ReadSeeker, doc *DocumentInfo, out io.Writer) error {
	w := NewWriter(out)
	pages := doc.NumPages()
	modulo := e.opts.Modulo
	maxPage := ((pages + modulo - 1) / modulo) * modulo

	if err := e.writeHeader(w, in, doc, pages); err != nil {
		return err
	}
	e.writeProcset(w)

	// A document that already went through this engine carries its
	// composed transform in its own setup section; only a fresh one
	// needs PStoPSxform derived from the ambient matrix.
	if doc.BeginProcSet == 0 {
		w.WriteString(xformInit)
	}
	if err := e.writeSetup(w, in, doc); err != nil {
		return err
	}

	for thispg := 0; thispg < maxPage; thispg += modulo {
		if err := e.writeSheetGroup(w, in, doc, thispg, maxPage); err != nil {
			return err
		}
	}

	if err := w.CopyToEOF(in, doc.PageOffsets[pages]); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	e.cfg.notef("\nWrote %d pages, %d bytes\n", w.Pages(), w.Written())
	return nil
}

// writeHeader copies the input header, replacing the paper size
// comments and the page count. The replacements are written at the
// header's %%Pages: line; a header without one is copied with its paper
// size comments removed and no %%Pages:, %%DocumentMedia: or
// %%BoundingBox: line added.
func (e *Engine) writeHeader(w *Writer, in io.ReadSeeker, doc *DocumentInfo, pages int) error {
	modulo := e.opts.Modulo
	if doc.PagesComment != 0 {
		if err := w.CopyRangeFiltered(in, 0, doc.PagesComment, doc.SizeHeaders); err != nil {
			return err
		}
		if e.cfg.Width > 0 && e.cfg.Height > 0 {
			w.Printf("%%%%DocumentMedia: plain %d %d 0 () ()\n",
				int(e.cfg.Width+0.5), int(e.cfg.Height+0.5))
			w.Printf("%%%%BoundingBox: 0 0 %d %d\n",
				int(e.cfg.Width+0.5), int(e.cfg.Height+0.5))
		}
		w.Printf("%%%%Pages: %d 0\n", ((pages+modulo-1)/modulo)*e.opts.PPS)
		after, err := lineEnd(in, doc.PagesComment)
		if err != nil {
			return w.fail("read error at offset %d: %v", doc.PagesComment, err)
		}
		return w.CopyRangeFiltered(in, after, doc.HeaderEnd, doc.SizeHeaders)
	}
	return w.CopyRangeFiltered(in, 0, doc.HeaderEnd, doc.SizeHeaders)
}

// writeProcset emits the PStoPS prologue.
func (e *Engine) writeProcset(w *Writer) {
	name := "PStoPS"
	if e.opts.NoBind {
		name = "PStoPS-nobind"
	}
	w.Printf("%%%%BeginProcSet: %s %s\n", name, ProcsetVersion)
	w.WriteString(Procset)
	if e.opts.NoBind {
		w.WriteString("/bind{}def\n")
	}
	w.WriteString("%%EndProcSet\n")
}

// writeSetup copies the document prologue and setup, splicing out a
// previously embedded PStoPS procset.
func (e *Engine) writeSetup(w *Writer, in io.ReadSeeker, doc *DocumentInfo) error {
	if doc.BeginProcSet != 0 && doc.BeginProcSet >= doc.HeaderEnd &&
		doc.EndProcSet > doc.BeginProcSet && doc.EndProcSet <= doc.EndSetup {
		if err := w.CopyRange(in, doc.HeaderEnd, doc.BeginProcSet); err != nil {
			return err
		}
		return w.CopyRange(in, doc.EndProcSet, doc.EndSetup)
	}
	return w.CopyRange(in, doc.HeaderEnd, doc.EndSetup)
}

// writeSheetGroup emits every spec of one modulo block.
func (e *Engine) writeSheetGroup(w *Writer, in io.ReadSeeker, doc *DocumentInfo, thispg, maxPage int) error {
	pages := doc.NumPages()
	specs := e.opts.Specs
	prevAdd := false

	for i, sp := range specs {
		actual := e.actualPage(sp, thispg, maxPage)

		if !prevAdd {
			w.BeginPage(e.groupLabel(specs[i:], thispg, maxPage, pages))
		}

		var bodyStart int64
		if actual < pages {
			start, label, err := seekPage(in, doc, actual)
			if err != nil {
				return err
			}
			bodyStart = start
			e.cfg.notef("[%s] ", label)
		} else {
			e.cfg.notef("[*] ")
		}

		w.WriteString("userdict/PStoPSsaved save put\n")
		if sp.Flags&FlagGSave != 0 {
			e.writeTransform(w, sp)
		}
		if sp.Flags&FlagAddNext != 0 {
			w.WriteString("/PStoPSenablepage false def\n")
		}

		if actual < pages {
			pageEnd := doc.PageOffsets[actual+1]
			if doc.BeginProcSet != 0 {
				// A reprocessed page starts with the previous run's
				// state lines; keep them up to its own transform.
				pos, err := w.CopyUntilPrefix(in, bodyStart, pageEnd, "PStoPSxform")
				if err != nil {
					return err
				}
				bodyStart = pos
			}
			w.WriteString("PStoPSxform concat\n")
			if err := w.CopyRange(in, bodyStart, pageEnd); err != nil {
				return err
			}
		} else {
			w.WriteString("PStoPSxform concat showpage\n")
		}
		w.WriteString("PStoPSsaved restore\n")

		prevAdd = sp.Flags&FlagAddNext != 0
	}
	return w.Err()
}

// actualPage resolves a spec against one modulo block.
func (e *Engine) actualPage(sp *PageSpec, thispg, maxPage int) int {
	if sp.Flags&FlagReversed != 0 {
		return maxPage - thispg - e.opts.Modulo + sp.PageNo
	}
	return thispg + sp.PageNo
}

// groupLabel builds the composite %%Page: label for the merge group
// starting at specs[0]: the 1-based input page numbers in parentheses,
// with * for a synthesised blank.
func (e *Engine) groupLabel(specs []*PageSpec, thispg, maxPage, pages int) string {
	var parts []string
	for _, sp := range specs {
		actual := e.actualPage(sp, thispg, maxPage)
		if actual < pages {
			parts = append(parts, fmt.Sprintf("%d", actual+1))
		} else {
			parts = append(parts, "*")
		}
		if sp.Flags&FlagAddNext == 0 {
			break
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// writeTransform emits the placement transform for one spec. The order
// is fixed: translate, rotate, horizontal flip, vertical flip, scale.
func (e *Engine) writeTransform(w *Writer, sp *PageSpec) {
	w.WriteString("PStoPSmatrix setmatrix\n")
	if sp.Flags&FlagOffset != 0 {
		w.Printf("%f %f translate\n", sp.XOff, sp.YOff)
	}
	if sp.Flags&FlagRotate != 0 {
		w.Printf("%d rotate\n", sp.Rotate)
	}
	if sp.Flags&FlagHFlip != 0 {
		w.Printf("[ -1 0 0 1 %f 0 ] concat\n", e.cfg.Width*sp.Scale)
	}
	if sp.Flags&FlagVFlip != 0 {
		w.Printf("[ 1 0 0 -1 0 %f ] concat\n", e.cfg.Height*sp.Scale)
	}
	if sp.Flags&FlagScale != 0 {
		w.Printf("%f dup scale\n", sp.Scale)
	}
	w.WriteString("userdict/PStoPSmatrix matrix currentmatrix put\n")
	if e.cfg.Width > 0 && e.cfg.Height > 0 {
		w.Printf("userdict/PStoPSclip{0 0 moveto\n %f 0 rlineto 0 %f rlineto -%f 0 rlineto\n closepath}put initclip\n",
			e.cfg.Width, e.cfg.Height, e.cfg.Width)
		if e.opts.Draw > 0 {
			w.Printf("gsave clippath 0 setgray %f setlinewidth stroke grestore\n", e.opts.Draw)
		}
	}
}

// seekPage reads page p's %%Page: comment and returns the offset of the
// body just after it and the page's own label. The input is left at an
// unspecified position; callers seek to the returned offset.
func seekPage(in io.ReadSeeker, doc *DocumentInfo, p int) (int64, string, error) {
	off := doc.PageOffsets[p]
	if _, err := in.Seek(off, io.SeekStart); err != nil {
		return 0, "", fmt.Errorf("seek error for page %d: %v", p+1, err)
	}
	r := bufio.NewReader(in)
	line, err := r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return 0, "", fmt.Errorf("read error for page %d: %v", p+1, err)
	}
	if !bytes.HasPrefix(line, []byte("%%Page:")) {
		return 0, "", fmt.Errorf("bad page comment for page %d", p+1)
	}
	label, _ := parsePageComment(line)
	return off + int64(len(line)), label, nil
}

// parsePageComment extracts the label and ordinal from a %%Page: line.
func parsePageComment(line []byte) (string, string) {
	rest := strings.TrimSpace(string(line[len("%%Page:"):]))
	fields := strings.Fields(rest)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], fields[0]
	default:
		return fields[0], fields[1]
	}
}
