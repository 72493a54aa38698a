// Command formpath serializes forms into structured payloads, resolves server
// error paths back to controls and submits forms from the terminal.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatalf("formpath: %v", err)
	}
}
