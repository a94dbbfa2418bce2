// Package telemetry implements the engine's windowed stats collector
// and CSV export, mirroring the teacher's telemetry package but keyed
// per colony instead of per organism kind (spec.md has no telemetry
// requirement of its own; this is a supplemented ambient feature, see
// SPEC_FULL.md).
package telemetry

// WindowStats holds one colony's aggregated counters for one telemetry
// window, ready to marshal straight to CSV via gocsv struct tags.
type WindowStats struct {
	WindowEndTick int64   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`
	Colony        int     `csv:"colony"`
	Population    int     `csv:"population"`
	FoodStock     int     `csv:"food_stock"`
	Spawns        int     `csv:"spawns"`
	Kills         int     `csv:"kills"`
	Deaths        int     `csv:"deaths"`
}

// Summary is one colony's match-long reduction over every window it
// appeared in.
type Summary struct {
	Colony             int     `csv:"colony"`
	Windows            int     `csv:"windows"`
	PopulationMean     float64 `csv:"population_mean"`
	PopulationVariance float64 `csv:"population_variance"`
	FoodStockMean      float64 `csv:"food_stock_mean"`
	TotalSpawns        int     `csv:"total_spawns"`
	TotalKills         int     `csv:"total_kills"`
	TotalDeaths        int     `csv:"total_deaths"`
}
