// lostfound runs the campus lost-and-found matching service.
package main

import (
	"os"

	"github.com/vbonduro/lostfound/cmd/lostfound/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
