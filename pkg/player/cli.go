package player

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joacoabraldes/chompchamps/pkg/log"
	"github.com/joacoabraldes/chompchamps/pkg/policy"
)

// Main is the shared entry point every player binary calls with its own
// policy: the IPC choreography (argument parsing, attach, per-turn
// loop) is identical across policies, so only the decision function
// varies from one cmd/player-* binary to the next.
func Main(p policy.Policy) {
	// stdout is the pipe the Arbiter reads move bytes from; the logger
	// must never write there.
	log.SetOutput(os.Stderr)
	log.SetComponent(fmt.Sprintf("player:%d", os.Getpid()))
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <width> <height>\n", os.Args[0])
		os.Exit(1)
	}
	width, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid width: %v\n", err)
		os.Exit(1)
	}
	height, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid height: %v\n", err)
		os.Exit(1)
	}

	if budget := os.Getenv("PLAYER_TIME_MS"); budget != "" {
		log.Debug("player: PLAYER_TIME_MS=%s (advisory; this policy does not need a decision budget)", budget)
	}

	ctx := context.Background()
	r, err := Attach(ctx, Config{
		StateShm: "/game_state",
		SyncShm:  "/game_sync",
		Width:    width,
		Height:   height,
		Policy:   p,
		Out:      os.Stdout,
	})
	if err != nil {
		log.Error("player: attach failed: %v", err)
		os.Exit(1)
	}
	defer r.Close()

	if err := r.Run(ctx); err != nil {
		log.Error("player: %v", err)
	}
}
