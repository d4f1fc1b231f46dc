// Command viewer attaches to a running game and renders its board and
// scoreboard to standard output every time the Arbiter signals a
// redraw.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joacoabraldes/chompchamps/pkg/log"
	"github.com/joacoabraldes/chompchamps/pkg/viewer"
)

func main() {
	log.SetComponent("viewer")
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

	r, err := viewer.Attach(viewer.Config{
		StateShm: "/game_state",
		SyncShm:  "/game_sync",
		Width:    width,
		Height:   height,
		Out:      os.Stdout,
	})
	if err != nil {
		log.Error("viewer: attach failed: %v", err)
		os.Exit(1)
	}
	defer r.Close()

	if err := r.Run(context.Background()); err != nil {
		log.Error("viewer: %v", err)
		os.Exit(1)
	}
}
