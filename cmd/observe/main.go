// Command observe inspects observe.yaml component manifests.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/observe/cmd/observe/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
