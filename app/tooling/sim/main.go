// This program runs gossip simulations and acts as a wallet for a node.
package main

import (
	"github.com/ardanlabs/ledgersim/app/tooling/sim/cmd"
)

func main() {
	cmd.Execute()
}
