// psbook - rearrange pages into printing signatures
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/novvoo/go-psutils/pkg/ps"
)

var (
	quiet     = flag.Bool("q", false, "don't print page numbers")
	signature = flag.Int("s", 0, "signature size, a multiple of 4 (default: whole document)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: psbook [options] [INFILE [OUTFILE]]\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "psbook: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
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

	seq, err := ps.BookSequence(doc.NumPages(), *signature)
	if err != nil {
		die("%v", err)
	}

	cfg := &ps.Config{Messages: ps.NewMessages(*quiet)}
	if err := ps.WriteSequence(cfg, in, doc, output, seq); err != nil {
		die("%v", err)
	}
}
