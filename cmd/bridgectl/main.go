// Command bridgectl exercises the script bridge: it runs simulated scripting
// workloads on the wazero engine and reports how their objects were
// disposed on the UI thread.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
