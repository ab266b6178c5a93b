// Command lsh-core runs the smart home wall panel controller.
package main

import (
	"os"

	"github.com/labodj/lsh-core/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
