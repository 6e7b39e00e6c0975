// Command gcmockgen generates a stub implementation of a Go interface
// for embedders who want to supply a custom Observer (or other
// collector hook) without hand-writing the boilerplate.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lubsanovdmitry/courseprj-gc/internal/mockstub"
)

func main() {
	var (
		iface   string
		genPkg  string
		out     string
		sources string
		tags    string
	)

	flag.StringVar(&iface, "interface", "", "interface name to stub (required)")
	flag.StringVar(&genPkg, "pkg", "", "generated package name (default: <src pkg>stub)")
	flag.StringVar(&out, "out", "", "destination file path (writes to file when set)")
	flag.StringVar(&sources, "source", "./...", "source package patterns (comma-separated)")
	flag.StringVar(&tags, "tags", "", "build tags (comma-separated)")
	flag.Parse()

	if strings.TrimSpace(iface) == "" {
		fmt.Fprintln(os.Stderr, "error: -interface is required")
		fmt.Fprintln(os.Stderr, "usage: gcmockgen -interface <name> [-pkg <generated package>] [-out <destination>] [-source <patterns,comma-separated>] [-tags <build-tags,comma-separated>]")
		os.Exit(2)
	}

	var src []string

	for _, p := range strings.Split(sources, ",") {
		if p = strings.TrimSpace(p); p != "" {
			src = append(src, p)
		}
	}

	var tagSlice []string

	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tagSlice = append(tagSlice, t)
		}
	}

	code, err := mockstub.Generate(mockstub.GenOptions{
		InterfaceName:  iface,
		PackageName:    genPkg,
		Destination:    out,
		SourcePatterns: src,
		BuildTags:      tagSlice,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if out != "" {
		fmt.Fprintln(os.Stdout, "stub generated:", out)

		return
	}

	fmt.Fprintln(os.Stdout, code)
}
