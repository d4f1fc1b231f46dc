// Command player-greedy plays ChompChamps preferring the highest-reward
// cell not adjacent to another player's head.
package main

import (
	"github.com/joacoabraldes/chompchamps/pkg/player"
	"github.com/joacoabraldes/chompchamps/pkg/policy"
)

func main() {
	player.Main(policy.Greedy)
}
