// Package antpool implements the storage and lifecycle of ants with
// stable identities (spec.md component C: Ant Pool), backed by the
// mlange-42/ark ECS the way the teacher repo backs its organisms.
package antpool

import "github.com/obeeron/pherowar/internal/ids"

// Position is an ant's continuous world position; its cell index is
// floor(X), floor(Y) per spec.md §3.
type Position struct {
	X, Y float32
}

// Heading is an ant's facing direction in radians.
type Heading struct {
	Orientation float32
}

// Vitals tracks an ant's unified lifespan/health scalar and whether it
// is currently carrying a food unit. Baseline is the longevity value at
// the last rejuvenation point (spawn, food pickup/delivery, or a prior
// kill reward) — combat uses it to compute "half the longevity lost
// since spawn or last rejuvenation event" (spec.md §4.F).
type Vitals struct {
	Longevity float32
	Baseline  float32
	Carrying  bool
}

// Memory is an ant's 32-byte AI scratch space, opaque to the engine.
type Memory struct {
	Bytes [32]byte
}

// ThinkState tracks an ant's think-tick phase and the attack intent
// carried over from its previous think tick (spec.md §3 pending_attack).
// OnFood/OnNest record whether the ant occupied such a cell as of its
// last action application, so the resolver can detect the cell-entry
// transition that triggers an immediate think (spec.md §4.E).
type ThinkState struct {
	Timer         float32
	PendingAttack bool
	OnFood        bool
	OnNest        bool
}

// FightState holds an ant's ordered opponent list; non-empty means the
// ant is fighting (spec.md §4.F). The head is the active target.
type FightState struct {
	Opponents []ids.AntID
}

// Identity carries an ant's stable id and owning colony.
type Identity struct {
	ID     ids.AntID
	Colony ids.ColonyID
}
