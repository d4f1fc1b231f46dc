// Command player-trapper plays ChompChamps favouring moves that grow
// its own reachable territory while shrinking its opponents'.
package main

import (
	"github.com/joacoabraldes/chompchamps/pkg/player"
	"github.com/joacoabraldes/chompchamps/pkg/policy"
)

func main() {
	player.Main(policy.NewTrapper())
}
