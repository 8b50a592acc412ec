// Command cs-engine runs the Schelling segregation Monte-Carlo engine.
package main

import (
	"github.com/schelling-sim/cs-engine/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
