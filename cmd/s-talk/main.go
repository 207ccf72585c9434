// Command s-talk exchanges text lines with one peer over UDP.
//
//	s-talk 127.0.0.1 9000 9001   # first terminal
//	s-talk 127.0.0.1 9001 9000   # second terminal
//
// Type "!" on its own line to quit.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
