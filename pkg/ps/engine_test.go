package ps

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// pagesDoc builds a minimal DSC document with the given page count.
func pagesDoc(n int) string {
	var b strings.Builder
	b.WriteString("%!PS-Adobe-3.0\n")
	fmt.Fprintf(&b, "%%%%Pages: %d\n", n)
	b.WriteString("%%BoundingBox: 0 0 612 792\n")
	b.WriteString("%%EndComments\n")
	b.WriteString("%%BeginProlog\n/box{0 0 100 100 rectfill}def\n%%EndProlog\n")
	b.WriteString("%%BeginSetup\n1 setlinewidth\n%%EndSetup\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%%%%Page: %d %d\n(page %d) show\nshowpage\n", i, i, i)
	}
	b.WriteString("%%Trailer\n%%EOF\n")
	return b.String()
}

// runPstops indexes the input and runs the engine over it.
func runPstops(t *testing.T, cfg *Config, specStr, input string, opts Options) string {
	t.Helper()
	modulo, specs, err := ParseSpecs(specStr, cfg)
	if err != nil {
		t.Fatalf("ParseSpecs(%s) failed: %v", specStr, err)
	}
	opts.Modulo = modulo
	opts.PPS = CountGroups(specs)
	opts.Specs = specs

	in := strings.NewReader(input)
	doc, err := Scan(in)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	var out bytes.Buffer
	if err := NewEngine(cfg, opts).Run(in, doc, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

// a4Config returns a config with a4 output paper.
func a4Config() *Config {
	w, h, _ := Paper("a4")
	return &Config{Width: w, Height: h}
}

// TestEngineTwoUpScenario tests a classic 2-up imposition
func TestEngineTwoUpScenario(t *testing.T) {
	out := runPstops(t, a4Config(),
		"2:0L@.7(21cm,0)+1L@.7(21cm,14.85cm)", pagesDoc(4), Options{})

	if !strings.Contains(out, "%%Pages: 2 0\n") {
		t.Errorf("Expected %%%%Pages: 2 0 in output")
	}
	if !strings.Contains(out, "%%Page: (1,2) 1\n") || !strings.Contains(out, "%%Page: (3,4) 2\n") {
		t.Errorf("Expected composite page labels, got %q", pageComments(out))
	}
	if got := strings.Count(out, "90 rotate\n"); got != 4 {
		t.Errorf("Expected 4 rotations, got %d", got)
	}
	if got := strings.Count(out, "0.700000 dup scale\n"); got != 4 {
		t.Errorf("Expected 4 scale operations, got %d", got)
	}
	if !strings.Contains(out, "595.275591 0.000000 translate\n") {
		t.Errorf("Expected 21cm x offset translate")
	}
	if !strings.Contains(out, "595.275591 420.944882 translate\n") {
		t.Errorf("Expected 14.85cm y offset translate")
	}
	if got := strings.Count(out, "/PStoPSenablepage false def\n"); got != 2 {
		t.Errorf("Expected 2 suppressed showpages, got %d", got)
	}

	saves := strings.Count(out, "userdict/PStoPSsaved save put\n")
	restores := strings.Count(out, "PStoPSsaved restore\n")
	if saves != 4 || restores != 4 {
		t.Errorf("Unbalanced save/restore: %d saves, %d restores", saves, restores)
	}
}

// TestEngineBlankSynthesis tests padding with blank pages
func TestEngineBlankSynthesis(t *testing.T) {
	out := runPstops(t, &Config{}, "2:0,1", pagesDoc(1), Options{})

	if !strings.Contains(out, "%%Pages: 2 0\n") {
		t.Errorf("Expected %%%%Pages: 2 0")
	}
	if !strings.Contains(out, "%%Page: (1) 1\n") || !strings.Contains(out, "%%Page: (*) 2\n") {
		t.Errorf("Expected real then blank page, got %q", pageComments(out))
	}
	if got := strings.Count(out, "PStoPSxform concat showpage\n"); got != 1 {
		t.Errorf("Expected 1 blank page body, got %d", got)
	}
}

// TestEngineReversed tests reversed block addressing
func TestEngineReversed(t *testing.T) {
	out := runPstops(t, &Config{}, "2:-0", pagesDoc(6), Options{})

	want := []string{"%%Page: (5) 1\n", "%%Page: (3) 2\n", "%%Page: (1) 3\n"}
	pos := -1
	for _, m := range want {
		i := strings.Index(out, m)
		if i < 0 {
			t.Fatalf("Missing %q in output, got %q", m, pageComments(out))
		}
		if i < pos {
			t.Errorf("Page comment %q out of order", m)
		}
		pos = i
	}
	if strings.Index(out, "(page 5) show") > strings.Index(out, "(page 3) show") {
		t.Errorf("Page bodies out of order")
	}
}

// TestEngineReversedMerge tests reversed and forward specs on one sheet
func TestEngineReversedMerge(t *testing.T) {
	out := runPstops(t, a4Config(),
		"4:-3L@.7(21cm,0)+0L@.7(21cm,14.85cm)", pagesDoc(4), Options{})

	if got := strings.Count(out, "%%Page: ("); got != 1 {
		t.Errorf("Expected 1 output sheet, got %d", got)
	}
	if !strings.Contains(out, "%%Page: (4,1) 1\n") {
		t.Errorf("Expected label (4,1), got %q", pageComments(out))
	}
	if strings.Index(out, "(page 4) show") > strings.Index(out, "(page 1) show") {
		t.Errorf("Expected page 4 before page 1")
	}
}

// TestEngineTransformOrder tests the fixed transform emission order
func TestEngineTransformOrder(t *testing.T) {
	out := runPstops(t, a4Config(), "1:0LH@2(1in,2in)", pagesDoc(1), Options{})

	lines := []string{
		"PStoPSmatrix setmatrix\n",
		"72.000000 144.000000 translate\n",
		"90 rotate\n",
		"[ -1 0 0 1 1190.000000 0 ] concat\n",
		"2.000000 dup scale\n",
		"userdict/PStoPSmatrix matrix currentmatrix put\n",
	}
	pos := -1
	for _, line := range lines {
		i := strings.Index(out, line)
		if i < 0 {
			t.Fatalf("Missing %q in output", line)
		}
		if i < pos {
			t.Errorf("Transform line %q out of order", line)
		}
		pos = i
	}
}

// TestEngineClipAndDraw tests the page clip and border stroke
func TestEngineClipAndDraw(t *testing.T) {
	out := runPstops(t, a4Config(), "1:0@0.5", pagesDoc(1), Options{Draw: 1})

	if !strings.Contains(out, "userdict/PStoPSclip{0 0 moveto\n 595.000000 0 rlineto 0 842.000000 rlineto -595.000000 0 rlineto\n closepath}put initclip\n") {
		t.Errorf("Missing clip definition")
	}
	if !strings.Contains(out, "gsave clippath 0 setgray 1.000000 setlinewidth stroke grestore\n") {
		t.Errorf("Missing border stroke")
	}
}

// TestEngineMediaReplacement tests paper size comment rewriting
func TestEngineMediaReplacement(t *testing.T) {
	out := runPstops(t, a4Config(), "1:0", pagesDoc(2), Options{})

	if !strings.Contains(out, "%%DocumentMedia: plain 595 842 0 () ()\n") {
		t.Errorf("Missing replacement %%%%DocumentMedia")
	}
	if !strings.Contains(out, "%%BoundingBox: 0 0 595 842\n") {
		t.Errorf("Missing replacement %%%%BoundingBox")
	}
	if strings.Contains(out, "0 0 612 792") {
		t.Errorf("Original size header leaked into output")
	}
}

// TestEngineProcset tests the procset wrapper and nobind variant
func TestEngineProcset(t *testing.T) {
	out := runPstops(t, &Config{}, "1:0", pagesDoc(1), Options{})
	if !strings.Contains(out, "%%BeginProcSet: PStoPS 1 15\n") {
		t.Errorf("Missing procset header")
	}
	if got := strings.Count(out, "%%EndProcSet\n"); got != 1 {
		t.Errorf("Expected 1 %%%%EndProcSet, got %d", got)
	}
	if !strings.Contains(out, Procset) {
		t.Errorf("Procset body not emitted verbatim")
	}
	if !strings.Contains(out, xformInit) {
		t.Errorf("Missing PStoPSxform initialiser for a fresh input")
	}

	out = runPstops(t, &Config{}, "1:0", pagesDoc(1), Options{NoBind: true})
	if !strings.Contains(out, "%%BeginProcSet: PStoPS-nobind 1 15\n") {
		t.Errorf("Missing nobind procset header")
	}
	if !strings.Contains(out, "/bind{}def\n%%EndProcSet\n") {
		t.Errorf("Missing bind override before %%%%EndProcSet")
	}
}

// TestEngineReprocess tests running the engine over its own output
func TestEngineReprocess(t *testing.T) {
	first := runPstops(t, &Config{}, "1:0", pagesDoc(2), Options{})
	second := runPstops(t, &Config{}, "1:0", first, Options{})

	if got := strings.Count(second, "%%BeginProcSet: PStoPS"); got != 1 {
		t.Errorf("Expected exactly 1 procset, got %d", got)
	}
	// The first run's transform initialiser survives as document setup;
	// no new one may be added.
	if got := strings.Count(second, "userdict/PStoPSxform PStoPSmatrix"); got != 1 {
		t.Errorf("Expected 1 preserved xform initialiser, got %d", got)
	}

	saves := strings.Count(second, "userdict/PStoPSsaved save put\n")
	restores := strings.Count(second, "PStoPSsaved restore\n")
	if saves != restores {
		t.Errorf("Unbalanced save/restore: %d saves, %d restores", saves, restores)
	}
	if !strings.Contains(second, "(page 1) show") || !strings.Contains(second, "(page 2) show") {
		t.Errorf("Page bodies lost in reprocessing")
	}
}

// TestEngineSheetCount tests the output sheet invariant
func TestEngineSheetCount(t *testing.T) {
	tests := []struct {
		spec   string
		pages  int
		sheets int
	}{
		{"0", 5, 5},
		{"2:0", 5, 3},
		{"2:0,1", 3, 4},
		{"4:0+1,2+3", 8, 4},
	}

	for _, tt := range tests {
		out := runPstops(t, &Config{}, tt.spec, pagesDoc(tt.pages), Options{})
		if got := strings.Count(out, "%%Page: ("); got != tt.sheets {
			t.Errorf("Spec %s on %d pages: %d sheets, expected %d",
				tt.spec, tt.pages, got, tt.sheets)
		}
	}
}

// pageComments extracts the %%Page: lines for failure messages.
func pageComments(out string) []string {
	var found []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "%%Page: ") {
			found = append(found, line)
		}
	}
	return found
}
