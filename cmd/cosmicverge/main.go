// Command cosmicverge runs the tick engine server and its admin CLI.
package main

import (
	"github.com/cosmicverge/tickengine/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
