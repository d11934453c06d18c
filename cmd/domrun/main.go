// Command domrun drives the reference DOM engine through the binding layer.
//
//	domrun run page.js          evaluate a script against a fresh document
//	domrun demo                 fire a hashchange and print what listeners see
//	domrun tui [page.js]        browse the document tree interactively
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
