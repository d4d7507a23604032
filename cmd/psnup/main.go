// psnup - put multiple PostScript pages on one sheet
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/novvoo/go-psutils/pkg/ps"
)

var (
	quiet     = flag.Bool("q", false, "don't print page numbers")
	drawStr   = flag.String("d", "", "draw borders (line width, default 1)")
	landLeft  = flag.Bool("l", false, "input pages are landscape, rotated left")
	landRight = flag.Bool("r", false, "input pages are landscape, rotated right")
	flip      = flag.Bool("f", false, "swap input page width and height")
	column    = flag.Bool("c", false, "fill columns before rows")
	widthStr  = flag.String("w", "", "output paper width")
	heightSt  = flag.String("h", "", "output paper height")
	inWidth   = flag.String("W", "", "input paper width")
	inHeight  = flag.String("H", "", "input paper height")
	outPaper  = flag.String("p", "", "output paper name")
	inPaper   = flag.String("P", "", "input paper name")
	marginStr = flag.String("m", "", "margin around the whole sheet")
	borderStr = flag.String("b", "", "border around each page cell")
	tolerance = flag.Float64("t", ps.DefaultTolerance, "layout tolerance")
	scaleOver = flag.Float64("s", 0, "override the computed page scale")
	nup       = flag.Int("n", 1, "pages per sheet")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: psnup [options] -n N [INFILE [OUTFILE]]\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "psnup: "+format+"\n", args...)
	os.Exit(1)
}

// valueFlags are the single-letter options that take a value; the
// traditional syntax attaches it ("-pa4", "-m1cm").
const valueFlags = "dwhWHpPmbtsn"

// expandArgs rewrites traditional combined arguments into the separated
// form the flag package expects: "-4" becomes "-n 4", "-pa4" becomes
// "-p a4", and a bare "-d" gets its default line width.
func expandArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case len(a) == 2 && a[0] == '-' && a[1] >= '1' && a[1] <= '9':
			out = append(out, "-n", a[1:])
		case len(a) > 2 && a[0] == '-' && a[1] != '-' && strings.IndexByte(valueFlags, a[1]) >= 0:
			out = append(out, a[:2], a[2:])
		case a == "-d" && (i+1 >= len(args) || strings.HasPrefix(args[i+1], "-")):
			out = append(out, "-d", "1")
		default:
			out = append(out, a)
		}
	}
	return out
}

func main() {
	flag.Usage = usage
	flag.CommandLine.Parse(expandArgs(os.Args[1:]))

	args := flag.Args()
	if len(args) > 2 {
		usage()
		os.Exit(1)
	}

	cfg := &ps.Config{Messages: ps.NewMessages(*quiet)}

	// Output paper: explicit name, explicit dimensions, or the
	// environment default.
	name := *outPaper
	if name == "" && *widthStr == "" && *heightSt == "" {
		name = ps.DefaultPaper()
	}
	if name != "" {
		w, h, ok := ps.Paper(name)
		if !ok {
			die("unknown paper size '%s'", name)
		}
		cfg.Width, cfg.Height = w, h
	}
	if *widthStr != "" {
		w, err := ps.ParseDimen(*widthStr, cfg)
		if err != nil {
			die("%v", err)
		}
		cfg.Width = w
	}
	if *heightSt != "" {
		h, err := ps.ParseDimen(*heightSt, cfg)
		if err != nil {
			die("%v", err)
		}
		cfg.Height = h
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		die("output paper size not set")
	}

	opts := ps.NUpOptions{
		N:         *nup,
		Tolerance: *tolerance,
		Scale:     *scaleOver,
		Flip:      *flip,
		LeftRight: true,
		TopBottom: true,
	}

	// Landscape options rotate the traversal; each toggles column-major
	// order and one travel direction.
	if *landLeft {
		opts.Column = !opts.Column
		opts.TopBottom = !opts.TopBottom
	}
	if *landRight {
		opts.Column = !opts.Column
		opts.LeftRight = !opts.LeftRight
	}
	if *column {
		opts.Column = !opts.Column
	}

	if *inPaper != "" {
		w, h, ok := ps.Paper(*inPaper)
		if !ok {
			die("unknown paper size '%s'", *inPaper)
		}
		opts.InWidth, opts.InHeight = w, h
	}
	if *inWidth != "" {
		w, err := ps.ParseDimen(*inWidth, cfg)
		if err != nil {
			die("%v", err)
		}
		opts.InWidth = w
	}
	if *inHeight != "" {
		h, err := ps.ParseDimen(*inHeight, cfg)
		if err != nil {
			die("%v", err)
		}
		opts.InHeight = h
	}

	if *marginStr != "" {
		m, err := ps.ParseDimen(*marginStr, cfg)
		if err != nil {
			die("%v", err)
		}
		opts.Margin = m
	}
	if *borderStr != "" {
		b, err := ps.ParseDimen(*borderStr, cfg)
		if err != nil {
			die("%v", err)
		}
		opts.Border = b
	}
	if *drawStr != "" {
		d, err := ps.ParseDimen(*drawStr, cfg)
		if err != nil {
			die("%v", err)
		}
		opts.Draw = d
	}

	var input io.Reader = os.Stdin
	if len(args) >= 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			die("can't open input file: %v", err)
		}
		defer f.Close()
		input = f
	}

	output := os.Stdout
	if len(args) >= 2 && args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			die("can't open output file: %v", err)
		}
		defer f.Close()
		output = f
	}

	in, cleanup, err := ps.Spool(input)
	if err != nil {
		die("%v", err)
	}
	defer cleanup()

	doc, err := ps.Scan(in)
	if err != nil {
		die("%v", err)
	}

	if err := ps.NUp(cfg, opts, in, doc, output); err != nil {
		die("%v", err)
	}
}
