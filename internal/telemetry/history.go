package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/obeeron/pherowar/internal/ids"
)

// History accumulates every window a Collector has flushed, keyed by
// colony, so a final match Summary can be reduced from the samples with
// gonum/stat rather than hand-rolled accumulators.
type History struct {
	population map[ids.ColonyID][]float64
	foodStock  map[ids.ColonyID][]float64
	spawns     map[ids.ColonyID]int
	kills      map[ids.ColonyID]int
	deaths     map[ids.ColonyID]int
	order      []ids.ColonyID
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{
		population: make(map[ids.ColonyID][]float64),
		foodStock:  make(map[ids.ColonyID][]float64),
		spawns:     make(map[ids.ColonyID]int),
		kills:      make(map[ids.ColonyID]int),
		deaths:     make(map[ids.ColonyID]int),
	}
}

// Record appends one Collector.Flush's worth of windows.
func (h *History) Record(stats []WindowStats) {
	for _, s := range stats {
		id := ids.ColonyID(s.Colony)
		if _, seen := h.population[id]; !seen {
			h.order = append(h.order, id)
		}
		h.population[id] = append(h.population[id], float64(s.Population))
		h.foodStock[id] = append(h.foodStock[id], float64(s.FoodStock))
		h.spawns[id] += s.Spawns
		h.kills[id] += s.Kills
		h.deaths[id] += s.Deaths
	}
}

// Summarize reduces each colony's recorded windows to a Summary,
// using stat.MeanVariance/stat.Mean the way the teacher's cmd/optimize
// tooling leans on gonum for reductions over a sample.
func (h *History) Summarize() []Summary {
	out := make([]Summary, 0, len(h.order))
	for _, id := range h.order {
		pop := h.population[id]
		popMean, popVar := stat.MeanVariance(pop, nil)
		out = append(out, Summary{
			Colony:             int(id),
			Windows:            len(pop),
			PopulationMean:     popMean,
			PopulationVariance: popVar,
			FoodStockMean:      stat.Mean(h.foodStock[id], nil),
			TotalSpawns:        h.spawns[id],
			TotalKills:         h.kills[id],
			TotalDeaths:        h.deaths[id],
		})
	}
	return out
}
