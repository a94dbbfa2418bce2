// Package colony implements the Colony Manager: colony id allocation,
// spawning cadence, food accounting, removal, and victory detection
// (spec.md component G).
package colony

import (
	"math/rand"

	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/pheromone"
)

// Colony is one player's accounting state. Ant storage itself lives in
// the shared antpool.Pool; Colony only tracks what the Manager needs to
// run its own cadence.
type Colony struct {
	ID         ids.ColonyID
	PlayerPath string
	FoodStock  int
	spawnTimer float64
	nextNest   int
}

// Manager owns every colony's bookkeeping against the shared grid,
// pheromone field, and ant pool.
type Manager struct {
	grid  *grid.Grid
	field *pheromone.Field
	pool  *antpool.Pool

	spawnCfg *config.SpawnConfig
	antCfg   *config.AntConfig

	colonies map[ids.ColonyID]*Colony
}

// New creates an empty Manager over the given world state.
func New(g *grid.Grid, field *pheromone.Field, pool *antpool.Pool, spawnCfg *config.SpawnConfig, antCfg *config.AntConfig) *Manager {
	return &Manager{
		grid:     g,
		field:    field,
		pool:     pool,
		spawnCfg: spawnCfg,
		antCfg:   antCfg,
		colonies: make(map[ids.ColonyID]*Colony),
	}
}

// AddColony registers a new colony for playerPath (the path of the AI
// worker executable, which the player host runs directly; no shared
// library is loaded), allocating the lowest unused nonnegative id. It
// registers nestCells as this colony's nests on the grid — the id isn't
// known until allocation, so nest registration happens here rather than
// ahead of time by the map loader — gives it an empty pheromone layer,
// and spawns its initial population. Returns the assigned id.
func (m *Manager) AddColony(playerPath string, nestCells []grid.Coord, rng *rand.Rand) ids.ColonyID {
	id := m.allocateID()
	c := &Colony{ID: id, PlayerPath: playerPath}
	m.colonies[id] = c
	m.field.AddColony(id)

	for _, n := range nestCells {
		m.grid.AddNest(id, n.X, n.Y)
	}

	for i := 0; i < m.spawnCfg.InitialPopulation; i++ {
		m.spawnAt(c, rng)
	}
	return id
}

func (m *Manager) allocateID() ids.ColonyID {
	for i := ids.ColonyID(0); ; i++ {
		if _, ok := m.colonies[i]; !ok {
			return i
		}
	}
}

// Colony returns colony's bookkeeping record, or nil if unknown.
func (m *Manager) Colony(id ids.ColonyID) *Colony {
	return m.colonies[id]
}

// Deliver credits colony's food stock. Implements action.FoodDepot.
func (m *Manager) Deliver(colony ids.ColonyID, units int) {
	if c, ok := m.colonies[colony]; ok {
		c.FoodStock += units
	}
}

// AdvanceSpawning advances every colony's spawn timer by dt and spawns
// one ant per elapsed ANT_SPAWN_INTERVAL for which the colony can
// afford ANT_SPAWN_FOOD_COST (spec.md §4.G, §4.H step 6).
func (m *Manager) AdvanceSpawning(dt float64, rng *rand.Rand) {
	for _, c := range m.colonies {
		c.spawnTimer += dt
		for c.spawnTimer >= m.spawnCfg.Interval {
			c.spawnTimer -= m.spawnCfg.Interval
			if c.FoodStock >= m.spawnCfg.FoodCost {
				c.FoodStock -= m.spawnCfg.FoodCost
				m.spawnAt(c, rng)
			}
		}
	}
}

// spawnAt spawns one ant at c's next nest cell in round-robin order,
// deterministic given rng's seed (spec.md §4.G).
func (m *Manager) spawnAt(c *Colony, rng *rand.Rand) {
	nests := m.grid.NestsOf(c.ID)
	if len(nests) == 0 {
		return
	}
	n := nests[c.nextNest%len(nests)]
	c.nextNest++
	m.pool.Spawn(c.ID, float32(n.X)+0.5, float32(n.Y)+0.5, float32(m.antCfg.MaxLongevity), rng)
}

// RemoveColony purges colony's pheromone layer, nest registry, and
// every ant it owns, leaving no dangling references (spec.md §4.G).
func (m *Manager) RemoveColony(colony ids.ColonyID) {
	var dead []ids.AntID
	m.pool.ForEachInColony(colony, func(id ids.AntID) {
		dead = append(dead, id)
	})
	for _, id := range dead {
		m.pool.Remove(id)
	}
	m.field.RemoveColony(colony)
	m.grid.RemoveColony(colony)
	delete(m.colonies, colony)
}

// LiveAntCount returns the number of living ants owned by colony.
func (m *Manager) LiveAntCount(colony ids.ColonyID) int {
	count := 0
	m.pool.ForEachInColony(colony, func(ids.AntID) { count++ })
	return count
}

// CheckVictory reports the sole qualifying colony among players, if
// exactly one remains: a colony qualifies while it has living ants, or
// still has nest cells and enough food stock to spawn from them. A
// wiped colony that can no longer afford ANT_SPAWN_FOOD_COST has no
// viable spawning capability even if its nests are still registered.
// Returns ok=false while two or more colonies (or zero) qualify
// (spec.md §4.G).
func (m *Manager) CheckVictory(players []ids.ColonyID) (ids.ColonyID, bool) {
	var qualifying []ids.ColonyID
	for _, p := range players {
		c, ok := m.colonies[p]
		if !ok {
			continue
		}
		alive := m.LiveAntCount(p) > 0
		canSpawn := len(m.grid.NestsOf(p)) > 0 && c.FoodStock >= m.spawnCfg.FoodCost
		if alive || canSpawn {
			qualifying = append(qualifying, p)
		}
	}
	if len(qualifying) == 1 {
		return qualifying[0], true
	}
	return ids.NoColony, false
}
