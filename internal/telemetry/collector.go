package telemetry

import "github.com/obeeron/pherowar/internal/ids"

// Collector accumulates per-colony spawn/kill/death events within a
// tick window and produces WindowStats on Flush, the way the teacher's
// Collector windows bites/births/deaths by tick count.
type Collector struct {
	windowTicks int64
	windowStart int64
	dt          float64

	counters map[ids.ColonyID]*colonyCounters
}

type colonyCounters struct {
	spawns, kills, deaths int
}

// NewCollector creates a Collector whose windows last windowSeconds of
// simulated time, given a fixed per-tick step dt.
func NewCollector(windowSeconds, dt float64) *Collector {
	ticks := int64(windowSeconds / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		windowTicks: ticks,
		dt:          dt,
		counters:    make(map[ids.ColonyID]*colonyCounters),
	}
}

func (c *Collector) counter(colony ids.ColonyID) *colonyCounters {
	cc, ok := c.counters[colony]
	if !ok {
		cc = &colonyCounters{}
		c.counters[colony] = cc
	}
	return cc
}

// RecordSpawn records n ants spawned for colony this window.
func (c *Collector) RecordSpawn(colony ids.ColonyID, n int) {
	if n <= 0 {
		return
	}
	c.counter(colony).spawns += n
}

// RecordKill records a kill credited to colony.
func (c *Collector) RecordKill(colony ids.ColonyID) {
	c.counter(colony).kills++
}

// RecordDeath records an ant of colony's death, killed or otherwise.
func (c *Collector) RecordDeath(colony ids.ColonyID) {
	c.counter(colony).deaths++
}

// ShouldFlush reports whether enough ticks have elapsed since the last
// Flush to close out the current window.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Flush produces one WindowStats per colony in colonies, pulling
// current population and food stock from the maps the caller supplies
// (the Collector has no world reference of its own), and resets every
// colony's event counters for the next window.
func (c *Collector) Flush(tick int64, colonies []ids.ColonyID, population, foodStock map[ids.ColonyID]int) []WindowStats {
	out := make([]WindowStats, 0, len(colonies))
	for _, id := range colonies {
		cc := c.counter(id)
		out = append(out, WindowStats{
			WindowEndTick: tick,
			SimTimeSec:    float64(tick) * c.dt,
			Colony:        int(id),
			Population:    population[id],
			FoodStock:     foodStock[id],
			Spawns:        cc.spawns,
			Kills:         cc.kills,
			Deaths:        cc.deaths,
		})
		*cc = colonyCounters{}
	}
	c.windowStart = tick
	return out
}
