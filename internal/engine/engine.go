// Package engine implements the fixed-dt Tick Scheduler that drives one
// match: pheromone decay, think dispatch to the Player Host, action
// resolution, combat, spawning, longevity reaping, and victory
// detection (spec.md component H).
package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"math/rand"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/action"
	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/colony"
	"github.com/obeeron/pherowar/internal/combat"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/enginelog"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/pheromone"
	"github.com/obeeron/pherowar/internal/player"
	"github.com/obeeron/pherowar/internal/sensing"
	"github.com/obeeron/pherowar/internal/telemetry"
)

// FixedDT is the scheduler's tick step. spec.md §4.H requires a fixed
// dt governed by a wall-clock pacing loop but leaves the exact value
// implementation-defined; 1/60s keeps think-tick phase error small
// relative to THINK_INTERVAL=0.375s.
const FixedDT = 1.0 / 60.0

// Engine owns one match's entire world state and drives its tick loop.
type Engine struct {
	cfg   *config.Config
	grid  *grid.Grid
	field *pheromone.Field
	pool  *antpool.Pool
	sense *sensing.Sensing
	fight *combat.Resolver
	mgr   *colony.Manager
	rng   *rand.Rand

	hosts      map[ids.ColonyID]*player.Host
	decayRates map[ids.ColonyID][8]float32
	players    []ids.ColonyID

	telemetry    *telemetry.Collector
	telemetryOut *telemetry.OutputManager
	history      *telemetry.History

	decayAccum float64
	tick       int64
}

// New creates an Engine over g, ready for AddPlayer calls. A non-empty
// cfg.Telemetry.OutputDir enables per-window CSV export (spec.md
// carries no telemetry requirement of its own; this is a supplemented
// ambient feature, see SPEC_FULL.md).
func New(g *grid.Grid, cfg *config.Config, seed int64) *Engine {
	pool := antpool.New()
	field := pheromone.NewField(g.Width(), g.Height())
	sense := sensing.New(g, field, pool, &cfg.Sense)
	mgr := colony.New(g, field, pool, &cfg.Spawn, &cfg.Ant)
	fight := combat.New(pool, g, sense, &cfg.Ant, &cfg.Sense)

	telemetryOut, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		enginelog.Logf("telemetry: %v", err)
	}

	return &Engine{
		cfg:          cfg,
		grid:         g,
		field:        field,
		pool:         pool,
		sense:        sense,
		fight:        fight,
		mgr:          mgr,
		rng:          rand.New(rand.NewSource(seed)),
		hosts:        make(map[ids.ColonyID]*player.Host),
		decayRates:   make(map[ids.ColonyID][8]float32),
		telemetry:    telemetry.NewCollector(cfg.Telemetry.WindowSeconds, FixedDT),
		telemetryOut: telemetryOut,
		history:      telemetry.NewHistory(),
	}
}

// Pool exposes the ant pool for read-only inspection (telemetry, tests).
func (e *Engine) Pool() *antpool.Pool { return e.pool }

// Grid exposes the grid for read-only inspection.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Colony exposes the colony manager for read-only inspection.
func (e *Engine) Colony(id ids.ColonyID) *colony.Colony { return e.mgr.Colony(id) }

// TickCount returns the number of completed ticks so far.
func (e *Engine) TickCount() int64 { return e.tick }

// AddPlayer registers a new colony whose AI worker executable lives at
// soPath, with nests at nestCells, and launches its worker. A launch
// failure degrades gracefully to a null AI for this colony rather than
// failing the whole match (spec.md §7 WorkerLaunchFailed).
func (e *Engine) AddPlayer(soPath string, nestCells []grid.Coord) ids.ColonyID {
	id := e.mgr.AddColony(soPath, nestCells, e.rng)

	host := player.NewHost(id, soPath, player.Options{
		UpdateDeadline: time.Duration(e.cfg.Player.UpdateDeadlineMs) * time.Millisecond,
		SetupDeadline:  time.Duration(e.cfg.Player.SetupDeadlineMs) * time.Millisecond,
		LogDir:         e.cfg.Player.LogDir,
		Limits:         player.Limits{CPUQuota: e.cfg.Player.SandboxCPUQuota},
	})
	e.hosts[id] = host

	rates := defaultDecayRates(e.cfg)
	if setup, err := host.Launch(); err == nil {
		rates = setup.DecayRates
	} else {
		enginelog.LogWorkerEvent(int(id), "launch-failed", err.Error())
	}
	e.decayRates[id] = rates
	e.players = append(e.players, id)
	return id
}

func defaultDecayRates(cfg *config.Config) [8]float32 {
	var rates [8]float32
	for i := range rates {
		if i < len(cfg.Pheromone.DefaultDecayRates) {
			rates[i] = float32(cfg.Pheromone.DefaultDecayRates[i])
		}
	}
	return rates
}

// ReplacePlayer swaps colony's AI worker for a new executable,
// re-running SETUP (spec.md §4.I explicit player replacement).
func (e *Engine) ReplacePlayer(colonyID ids.ColonyID, soPath string) error {
	host, ok := e.hosts[colonyID]
	if !ok {
		return nil
	}
	setup, err := host.Replace(soPath)
	if err != nil {
		enginelog.LogWorkerEvent(int(colonyID), "replace-failed", err.Error())
		return err
	}
	e.decayRates[colonyID] = setup.DecayRates
	return nil
}

// Close tears down every colony's worker process and flushes the final
// telemetry summary, if output is enabled.
func (e *Engine) Close() {
	for _, h := range e.hosts {
		h.Close()
	}
	if err := e.telemetryOut.WriteSummary(e.history.Summarize()); err != nil {
		enginelog.Logf("telemetry: %v", err)
	}
	if err := e.telemetryOut.Close(); err != nil {
		enginelog.Logf("telemetry: %v", err)
	}
}

// Tick advances the simulation by one fixed step, in the order spec.md
// §4.H and §5 require: decay, think (gathered), actions, combat, spawn,
// reap.
func (e *Engine) Tick(dt float64) {
	e.tick++

	e.applyDecay(dt)

	due := e.collectDueAnts(float32(dt))
	e.sense.RebuildIndex()
	results := e.dispatchThink(due)
	for _, r := range results {
		if r.err != nil || !e.pool.Has(r.id) {
			continue
		}
		action.Apply(e.pool, e.grid, e.field, e.mgr, &e.cfg.Ant, r.id, r.out, float32(dt))
		mem := e.pool.MemoryOf(r.id)
		if mem != nil {
			mem.Bytes = r.memory
		}
	}

	e.fight.Engage()
	e.fight.Resolve()
	for _, kill := range e.fight.LastKills() {
		e.telemetry.RecordKill(kill.KillerColony)
		e.telemetry.RecordDeath(kill.VictimColony)
	}

	before := e.livePopulation()
	e.mgr.AdvanceSpawning(dt, e.rng)
	for _, id := range e.players {
		if delta := e.mgr.LiveAntCount(id) - before[id]; delta > 0 {
			e.telemetry.RecordSpawn(id, delta)
		}
	}

	e.decrementLongevityAndReap(float32(dt))

	if e.telemetry.ShouldFlush(e.tick) {
		window := e.telemetry.Flush(e.tick, e.players, e.livePopulation(), e.foodStocks())
		e.history.Record(window)
		if err := e.telemetryOut.WriteWindow(window); err != nil {
			enginelog.Logf("telemetry: %v", err)
		}
	}

	enginelog.LogTick(e.tick, len(e.players), e.pool.Count())
}

func (e *Engine) livePopulation() map[ids.ColonyID]int {
	out := make(map[ids.ColonyID]int, len(e.players))
	for _, id := range e.players {
		out[id] = e.mgr.LiveAntCount(id)
	}
	return out
}

func (e *Engine) foodStocks() map[ids.ColonyID]int {
	out := make(map[ids.ColonyID]int, len(e.players))
	for _, id := range e.players {
		if c := e.mgr.Colony(id); c != nil {
			out[id] = c.FoodStock
		}
	}
	return out
}

func (e *Engine) applyDecay(dt float64) {
	e.decayAccum += dt
	for e.decayAccum >= e.cfg.Pheromone.DecayInterval {
		e.decayAccum -= e.cfg.Pheromone.DecayInterval
		for _, id := range e.players {
			e.field.DecayAll(id, e.decayRates[id])
		}
	}
}

// collectDueAnts advances every live ant's think timer by dt and groups
// those now due (or edge-triggered, per the timer pin in
// internal/action) by owning colony, for per-colony-serial dispatch.
func (e *Engine) collectDueAnts(dt float32) map[ids.ColonyID][]ids.AntID {
	due := make(map[ids.ColonyID][]ids.AntID)
	e.pool.ForEach(func(id ids.AntID) {
		think := e.pool.ThinkState(id)
		think.Timer += dt
		if think.Timer >= float32(e.cfg.Ant.ThinkInterval) {
			identity := e.pool.Identity(id)
			due[identity.Colony] = append(due[identity.Colony], id)
		}
	})
	return due
}

type thinkResult struct {
	id     ids.AntID
	out    abi.AntOutput
	memory [32]byte
	err    error
}

// dispatchThink issues concurrent UPDATE round trips across colonies
// (serialized within each colony by the Host's own mutex), matching
// spec.md §5's "Player communication is the only parallel axis".
func (e *Engine) dispatchThink(due map[ids.ColonyID][]ids.AntID) []thinkResult {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []thinkResult

	for colonyID, antIDs := range due {
		host := e.hosts[colonyID]
		if host == nil {
			continue
		}
		wg.Add(1)
		go func(antIDs []ids.AntID, host *player.Host) {
			defer wg.Done()
			local := make([]thinkResult, 0, len(antIDs))
			for _, id := range antIDs {
				in := e.sense.BuildInput(id)
				mem := e.pool.MemoryOf(id)
				if mem == nil {
					continue
				}
				out, newMem, err := host.Update(id, in, mem.Bytes)
				local = append(local, thinkResult{id: id, out: out, memory: newMem, err: err})
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}(antIDs, host)
	}
	wg.Wait()
	return all
}

func (e *Engine) decrementLongevityAndReap(dt float32) {
	var dead []ids.AntID
	e.pool.ForEach(func(id ids.AntID) {
		vitals := e.pool.Vitals(id)
		vitals.Longevity -= dt
		if vitals.Longevity <= 0 {
			dead = append(dead, id)
		}
	})
	for _, id := range dead {
		e.reap(id)
	}
}

// reap removes an ant that died of longevity expiry: it drops any
// carried food (unless standing on a Wall) and is pruned from every
// remaining fight list, but grants no killer reward (spec.md §3, §4.F).
func (e *Engine) reap(id ids.AntID) {
	e.telemetry.RecordDeath(e.pool.Identity(id).Colony)

	vitals := e.pool.Vitals(id)
	if vitals.Carrying {
		pos := e.pool.Position(id)
		x, y := int(math.Floor(float64(pos.X))), int(math.Floor(float64(pos.Y)))
		if e.grid.CellAt(x, y).Kind != grid.Wall {
			e.grid.DropFood(x, y, 1)
		}
	}
	e.pool.ForEach(func(other ids.AntID) {
		fight := e.pool.FightState(other)
		fight.Opponents = pruneAnt(fight.Opponents, id)
	})
	e.pool.Remove(id)
}

func pruneAnt(list []ids.AntID, id ids.AntID) []ids.AntID {
	out := list[:0]
	for _, x := range list {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// CheckVictory reports the sole surviving registered colony, if any.
func (e *Engine) CheckVictory() (ids.ColonyID, bool) {
	return e.mgr.CheckVictory(e.players)
}

// Run drives the tick loop under a wall-clock pacing schedule at the
// given speed multiplier (speed<=0 means unlimited, for --evaluate). It
// stops at maxTicks (0 means unbounded), ctx cancellation, or — when
// evaluate is set — the first detected victory.
func (e *Engine) Run(ctx context.Context, maxTicks int64, speed float64, evaluate bool) (winner ids.ColonyID, won bool) {
	unlimited := speed <= 0
	for maxTicks <= 0 || e.tick < maxTicks {
		select {
		case <-ctx.Done():
			return ids.NoColony, false
		default:
		}

		start := time.Now()
		e.Tick(FixedDT)

		if w, ok := e.CheckVictory(); ok {
			enginelog.LogVictory(int(w), e.tick)
			if evaluate {
				return w, true
			}
		}

		if !unlimited {
			wanted := time.Duration(FixedDT / speed * float64(time.Second))
			if elapsed := time.Since(start); elapsed < wanted {
				time.Sleep(wanted - elapsed)
			}
		}
	}
	return ids.NoColony, false
}
