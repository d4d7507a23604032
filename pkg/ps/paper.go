package ps

import (
	"strings"

	"github.com/xyproto/env/v2"
)

// paperSize is one entry of the paper registry, in PostScript points.
type paperSize struct {
	width  float64
	height float64
}

// paperSizes maps lower-case paper names to their dimensions.
var paperSizes = map[string]paperSize{
	"a0":        {2384, 3371},
	"a1":        {1685, 2384},
	"a2":        {1190, 1684},
	"a3":        {842, 1190},
	"a4":        {595, 842},
	"a5":        {420, 595},
	"b4":        {729, 1032},
	"b5":        {516, 729},
	"letter":    {612, 792},
	"legal":     {612, 1008},
	"ledger":    {1224, 792},
	"tabloid":   {792, 1224},
	"statement": {396, 612},
	"executive": {540, 720},
	"folio":     {612, 936},
	"quarto":    {610, 780},
	"10x14":     {720, 1008},
}

// Paper looks up a paper name and returns its dimensions in points.
func Paper(name string) (width, height float64, ok bool) {
	size, ok := paperSizes[strings.ToLower(name)]
	if !ok {
		return 0, 0, false
	}
	return size.width, size.height, true
}

// DefaultPaper returns the paper name configured in the environment,
// falling back to a4.
func DefaultPaper() string {
	return env.Str("PAPERSIZE", "a4")
}
