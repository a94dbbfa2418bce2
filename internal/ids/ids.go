// Package ids defines the stable identity types shared across the engine's
// subsystems (grid ownership, pheromone layers, the ant pool, combat, and
// the player host all key off the same two identifiers).
package ids

// ColonyID identifies a colony. The zero value is a valid colony id
// (colony ids are allocated lowest-available starting at 0); use
// NoColony to mean "unowned".
type ColonyID int

// NoColony marks a cell or reference as not belonging to any colony.
const NoColony ColonyID = -1

// AntID identifies an ant for its entire lifetime. Ant ids are never
// reused while the ant pool holds older history referencing them (e.g.
// fight lists), but the underlying storage slot may be recycled once
// nothing references the id anymore.
type AntID uint32
