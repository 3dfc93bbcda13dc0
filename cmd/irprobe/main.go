/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for irprobe. Infers the protocol of a captured
IR remote signal from its raw timings, prints an analysis report with an optional C++
code outline, converts captures to Pronto codes and serves the same analysis over HTTP.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/irprobe/cmd/irprobe/commands"
)

// Version is the irprobe release version
var Version = "1.0.0"

func main() {
	rootCmd := commands.NewRootCommand(Version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
