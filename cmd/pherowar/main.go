// Command pherowar runs one PheroWar match headless: it loads a map,
// launches each player's AI worker, and drives the tick loop to a
// winner or a tick ceiling, mirroring the teacher's own main.go flag
// wiring and logf helper but without any graphics — rendering is an
// external collaborator per spec.md §1.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"flag"

	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/engine"
	"github.com/obeeron/pherowar/internal/enginelog"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/mapfile"
)

const (
	defaultMapWidth  = 40
	defaultMapHeight = 40
)

var (
	mapPath    = flag.String("map", "", "Path to a map file (default: first file in the configured maps directory, else an empty map)")
	playerList = flag.String("players", "", "Comma-separated ordered list of AI worker executable paths")
	evaluate   = flag.Bool("evaluate", false, "Run at unlimited speed and exit on the first winner (requires >=2 players)")
	speed      = flag.Float64("speed", 1.0, "Simulation speed multiplier (<=0 means unlimited)")
	seed       = flag.Int64("seed", 1, "Random seed")
	maxTicks   = flag.Int64("max-ticks", 0, "Stop after N ticks (0 = run until victory or interrupted)")
	logEvery   = flag.Int64("log", 0, "Log world state every N ticks (0 = disabled)")
	logFile    = flag.String("logfile", "", "Write logs to file instead of stdout")
)

func main() {
	flag.Parse()

	logWriter, err := configureLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pherowar: %v\n", err)
		os.Exit(1)
	}
	if logWriter != nil {
		defer logWriter.Close()
	}

	players := splitPlayers(*playerList)
	if *evaluate && len(players) < 2 {
		fmt.Fprintln(os.Stderr, "pherowar: --evaluate requires at least 2 players")
		os.Exit(1)
	}

	cfg := config.MustInit("")

	m, err := loadMap(*mapPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pherowar: %v\n", err)
		os.Exit(1)
	}

	g := grid.New(m.Width, m.Height)
	if err := m.Apply(g); err != nil {
		fmt.Fprintf(os.Stderr, "pherowar: apply map: %v\n", err)
		os.Exit(1)
	}

	e := engine.New(g, cfg, *seed)
	defer e.Close()

	for i, path := range players {
		nests, ok := m.NestGroups[i]
		if !ok {
			fmt.Fprintf(os.Stderr, "pherowar: map has no nest group %d for player %q\n", i, path)
			os.Exit(1)
		}
		e.AddPlayer(path, nests)
	}

	runSpeed := *speed
	if *evaluate {
		runSpeed = 0
	}

	winner, won := e.Run(context.Background(), *maxTicks, runSpeed, *evaluate)
	if won {
		fmt.Printf("colony %d wins at tick %d\n", winner, e.TickCount())
		return
	}
	fmt.Printf("stopped after %d ticks, no winner\n", e.TickCount())
}

// configureLogging wires enginelog's writer and tick interval from
// flags, returning the opened log file (if any) for the caller to
// close on exit.
func configureLogging() (*os.File, error) {
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		enginelog.SetWriter(f)
		enginelog.SetTickInterval(*logEvery)
		return f, nil
	}
	if *logEvery > 0 {
		enginelog.SetWriter(os.Stdout)
	}
	enginelog.SetTickInterval(*logEvery)
	return nil, nil
}

func splitPlayers(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadMap applies spec.md §6's "no --map" fallback: the first file in
// the configured maps directory, else an empty map.
func loadMap(path string, cfg *config.Config) (*mapfile.Map, error) {
	if path == "" {
		if found, ok := mapfile.FindFirst(cfg.Maps.Directory); ok {
			path = found
		}
	}
	if path == "" {
		return mapfile.Empty(defaultMapWidth, defaultMapHeight), nil
	}
	return mapfile.Load(path)
}
