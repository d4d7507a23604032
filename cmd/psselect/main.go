// psselect - select pages from a PostScript document
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
	even     = flag.Bool("e", false, "select even input pages")
	odd      = flag.Bool("o", false, "select odd input pages")
	reverse  = flag.Bool("r", false, "reverse the selection")
	pageSpec = flag.String("p", "", "comma-separated page ranges")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: psselect [options] [PAGES] [INFILE [OUTFILE]]\n")
	fmt.Fprintf(os.Stderr, "\nPAGES is a comma-separated list of ranges FIRST-LAST; either bound\n")
	fmt.Fprintf(os.Stderr, "may be omitted, _N counts from the end, _ alone inserts a blank.\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "psselect: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	spec := *pageSpec
	// The first positional argument is a page list unless it names an
	// input file.
	if spec == "" && len(args) >= 1 && args[0] != "-" {
		if _, err := os.Stat(args[0]); err != nil {
			spec, args = args[0], args[1:]
		}
	}
	if len(args) > 2 {
		usage()
		os.Exit(1)
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

	var seq []int
	if spec != "" {
		seq, err = ps.ParseSelection(spec, doc.NumPages())
		if err != nil {
			die("%v", err)
		}
	} else {
		for p := 0; p < doc.NumPages(); p++ {
			seq = append(seq, p)
		}
	}

	if *even != *odd {
		seq = ps.FilterParity(seq, *even)
	}
	if *reverse {
		seq = ps.Reverse(seq)
	}

	cfg := &ps.Config{Messages: ps.NewMessages(*quiet)}
	if err := ps.WriteSequence(cfg, in, doc, output, seq); err != nil {
		die("%v", err)
	}
}
