// Command master runs the Arbiter: it hosts the board, spawns the
// player and viewer processes named on its command line, and prints
// the final standings when the game ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joacoabraldes/chompchamps/pkg/arbiter"
	"github.com/joacoabraldes/chompchamps/pkg/log"
)

// playerFlags collects repeated -p flags into an ordered list.
type playerFlags []string

func (p *playerFlags) String() string { return fmt.Sprint([]string(*p)) }
func (p *playerFlags) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	width := flag.Int("w", 10, "board width")
	height := flag.Int("h", 10, "board height")
	delayMs := flag.Int("d", 200, "delay in milliseconds between processed moves")
	timeoutSec := flag.Int("t", 10, "idle timeout in seconds")
	seed := flag.Int64("s", 0, "board RNG seed (default: wall time)")
	viewPath := flag.String("v", "", "path to the viewer binary")
	recordDir := flag.String("record", "", "directory to write a per-run SQLite move ledger to")
	logLevel := flag.String("log-level", "info", "log level")
	var players playerFlags
	flag.Var(&players, "p", "path to a player binary (repeatable, 1..9)")
	flag.Parse()

	parsedLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.SetLevel(parsedLevel)
	log.SetComponent("arbiter")

	for _, extra := range flag.Args() {
		if len(players) >= 9 {
			break
		}
		players = append(players, extra)
	}

	cfg := arbiter.Config{
		Width:       *width,
		Height:      *height,
		DelayMs:     *delayMs,
		TimeoutSec:  *timeoutSec,
		Seed:        *seed,
		ViewerPath:  *viewPath,
		PlayerPaths: players,
		RecordDir:   *recordDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := arbiter.New(cfg)
	if err != nil {
		log.Error("setup failed: %v", err)
		os.Exit(1)
	}
	defer a.Destroy()

	if err := a.Spawn(ctx); err != nil {
		log.Error("spawn failed: %v", err)
		os.Exit(1)
	}

	result, err := a.Run(ctx)
	if err != nil {
		log.Error("run failed: %v", err)
		os.Exit(1)
	}

	fmt.Print(arbiter.Summary(result))
}
