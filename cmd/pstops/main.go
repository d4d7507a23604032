// pstops - PostScript page rearrangement
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/novvoo/go-psutils/pkg/ps"
)

var (
	quiet    = flag.Bool("q", false, "don't print page numbers")
	nobind   = flag.Bool("b", false, "don't bind operators in the procset")
	drawStr  = flag.String("d", "", "draw a border around each page at this line width")
	widthStr = flag.String("w", "", "output page width (e.g. 8.5in, 21cm)")
	heightSt = flag.String("h", "", "output page height")
	paper    = flag.String("p", "", "output paper name (a4, letter, ...)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pstops [options] PAGESPECS [INFILE [OUTFILE]]\n")
	fmt.Fprintf(os.Stderr, "\nPAGESPECS = [MODULO:]SPEC[+SPEC|,SPEC]...\n")
	fmt.Fprintf(os.Stderr, "SPEC      = [-]PAGENO[L|R|U|H|V]...[@SCALE][(XOFF,YOFF)]\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "pstops: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || len(args) > 3 {
		usage()
		os.Exit(1)
	}

	cfg := &ps.Config{Messages: ps.NewMessages(*quiet)}
	if *paper != "" {
		w, h, ok := ps.Paper(*paper)
		if !ok {
			die("unknown paper size '%s'", *paper)
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

	var draw float64
	if *drawStr != "" {
		d, err := ps.ParseDimen(*drawStr, cfg)
		if err != nil {
			die("%v", err)
		}
		draw = d
	}

	modulo, specs, err := ps.ParseSpecs(args[0], cfg)
	if err != nil {
		die("%v", err)
	}

	var input io.Reader = os.Stdin
	if len(args) >= 2 && args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			die("can't open input file: %v", err)
		}
		defer f.Close()
		input = f
	}

	output := os.Stdout
	if len(args) >= 3 && args[2] != "-" {
		f, err := os.Create(args[2])
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

	engine := ps.NewEngine(cfg, ps.Options{
		Modulo: modulo,
		PPS:    ps.CountGroups(specs),
		NoBind: *nobind,
		Draw:   draw,
		Specs:  specs,
	})
	if err := engine.Run(in, doc, output); err != nil {
		die("%v", err)
	}
}
