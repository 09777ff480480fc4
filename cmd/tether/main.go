package main

import (
	"fmt"
	"os"

	"github.com/adamancini/tether/internal/cmd"
)

// Set by -ldflags "-X main.version=..." at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	info := cmd.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cmd.Execute(info); err != nil {
		fmt.Fprintf(os.Stderr, "tether: %v\n", err)
		os.Exit(1)
	}
}
