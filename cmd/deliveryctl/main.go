// Command deliveryctl reads reports and manages orders from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
