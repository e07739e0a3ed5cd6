// Package main renders a manager Definition as HTML.
//
//	mdoc -s dialog.yaml > dialog.html
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/tools"
)

func main() {
	var (
		defFilename = flag.String("s", "", "Definition filename (YAML)")
		css         = flag.String("css", "", "CSS files (comma-separated)")
		analyze     = flag.Bool("a", false, "Print an analysis to stderr")
	)

	flag.Parse()

	if *defFilename == "" {
		log.Fatal("need -s")
	}

	var cssFiles []string
	if *css != "" {
		cssFiles = strings.Split(*css, ",")
	}

	if *analyze {
		d, err := core.ReadDefinition(*defFilename)
		if err != nil {
			log.Fatal(err)
		}
		a := tools.Analyze(context.Background(), d)
		fmt.Fprintf(os.Stderr, "actions: %s\n", strings.Join(a.Actions, ","))
		fmt.Fprintf(os.Stderr, "middleware: %d\n", a.Middleware)
		fmt.Fprintf(os.Stderr, "interpreters: %s\n", strings.Join(a.Interpreters, ","))
		if 0 < len(a.Uninitialized) {
			fmt.Fprintf(os.Stderr, "uninitialized: %s\n", strings.Join(a.Uninitialized, ","))
		}
		for _, d := range a.Diagnostics {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", d.Level, d.Code, d.Message)
		}
		for _, e := range a.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
	}

	if err := tools.ReadAndRenderDefinitionPage(*defFilename, cssFiles, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
