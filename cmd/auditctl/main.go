package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/bookit/internal/auditctl"
)

func main() {
	if err := auditctl.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "auditctl:", err)
		os.Exit(1)
	}
}
