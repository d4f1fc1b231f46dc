// Command player-wanderer plays ChompChamps by picking a direction
// blindly, without consulting the board.
package main

import (
	"github.com/joacoabraldes/chompchamps/pkg/player"
	"github.com/joacoabraldes/chompchamps/pkg/policy"
)

func main() {
	player.Main(policy.Wanderer)
}
