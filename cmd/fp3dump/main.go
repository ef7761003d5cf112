// Command fp3dump decodes an FP3 binary template file and prints a
// human-readable summary. With -dot it additionally writes a Graphviz
// dump of the decoded template's internal structure, useful for manually
// inspecting a misbehaving FP3 blob during support triage.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"

	"github.com/bobbydeveaux/fpmatch-service/internal/fp3"
)

func main() {
	var dotPath string
	flag.StringVar(&dotPath, "dot", "", "write a Graphviz dump of the decoded template to this path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fp3dump [-dot out.dot] <file.fp3>")
		os.Exit(2)
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read file: %v\n", err)
		os.Exit(1)
	}

	tmpl, err := fp3.Decode(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("print type:    %d\n", tmpl.PrintType)
	fmt.Printf("driver id:     %s\n", tmpl.DriverID)
	fmt.Printf("device id:     %s\n", tmpl.DeviceID)
	fmt.Printf("device stored: %v\n", tmpl.DeviceStored)
	fmt.Printf("finger code:   %d\n", tmpl.FingerCode)
	if tmpl.HasUsername {
		fmt.Printf("username:      %s\n", tmpl.Username)
	}
	if tmpl.HasDescription {
		fmt.Printf("description:   %s\n", tmpl.Description)
	}
	fmt.Printf("julian date:   %d\n", tmpl.JulianDate)
	fmt.Printf("prints:        %d\n", len(tmpl.Prints))
	for i, p := range tmpl.Prints {
		fmt.Printf("  print %d: %d minutiae\n", i, p.N())
	}
	if len(tmpl.Metadata) > 0 {
		fmt.Printf("metadata keys: %d\n", len(tmpl.Metadata))
	}

	if dotPath == "" {
		return
	}

	f, err := os.Create(dotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create dot file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	memviz.Map(f, tmpl)
	fmt.Printf("wrote graph to %s\n", dotPath)
}
