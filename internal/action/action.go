// Package action implements the Action Resolver: applying an ant's
// AntOutput to its position, orientation, pheromone deposits, and food
// carry state (spec.md component E).
package action

import (
	"math"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/pheromone"
)

// FoodDepot receives delivered food on behalf of a colony. Implemented
// by internal/colony's Manager; kept as an interface here so action
// doesn't import colony.
type FoodDepot interface {
	Deliver(colony ids.ColonyID, units int)
}

// Apply applies out to ant id: turning and movement (skipped while
// fighting), pheromone deposits, food pickup/delivery, pending-attack
// recording, and the think-timer phase-preserving reset. dt is the
// scheduler's fixed tick step; the caller only invokes Apply for ants
// that thought this tick (spec.md §4.E, §4.H).
func Apply(pool *antpool.Pool, g *grid.Grid, field *pheromone.Field, depot FoodDepot, cfg *config.AntConfig, id ids.AntID, out abi.AntOutput, dt float32) {
	pos := pool.Position(id)
	heading := pool.Heading(id)
	vitals := pool.Vitals(id)
	think := pool.ThinkState(id)
	identity := pool.Identity(id)
	fight := pool.FightState(id)

	fighting := len(fight.Opponents) > 0

	if !fighting {
		turn := clamp32(out.TurnAngle, float32(-cfg.MaxTurnAngle), float32(cfg.MaxTurnAngle))
		heading.Orientation = normalizeAngle(heading.Orientation + turn)

		speed := float32(cfg.Speed)
		nx := pos.X + float32(math.Cos(float64(heading.Orientation)))*speed*dt
		ny := pos.Y + float32(math.Sin(float64(heading.Orientation)))*speed*dt
		// Sample the step at most one cell apart, destination included, so
		// a long step cannot carry the ant across a wall cell.
		steps := int(math.Ceil(float64(speed * dt)))
		blocked := false
		for s := 1; s <= steps && !blocked; s++ {
			f := float32(s) / float32(steps)
			cx := int(math.Floor(float64(pos.X + (nx-pos.X)*f)))
			cy := int(math.Floor(float64(pos.Y + (ny-pos.Y)*f)))
			blocked = !g.IsPassable(cx, cy)
		}
		if !blocked {
			pos.X, pos.Y = nx, ny
		}
		// Else: reject and keep the previous position (spec.md §4.E).
	}

	cellX, cellY := int(math.Floor(float64(pos.X))), int(math.Floor(float64(pos.Y)))

	for ch, amount := range out.PheromoneAmounts {
		field.Deposit(identity.Colony, cellX, cellY, ch, amount)
	}

	cell := g.CellAt(cellX, cellY)
	onFood := cell.Kind == grid.Food && cell.FoodAmount > 0
	onNest := cell.Kind == grid.Nest && cell.NestOwner == identity.Colony

	if onFood && !vitals.Carrying {
		if taken := g.ConsumeFood(cellX, cellY, 1); taken > 0 {
			vitals.Carrying = true
			vitals.Longevity = float32(cfg.MaxLongevity)
			vitals.Baseline = float32(cfg.MaxLongevity)
		}
	}
	if onNest && vitals.Carrying {
		depot.Deliver(identity.Colony, 1)
		vitals.Carrying = false
		vitals.Longevity = float32(cfg.MaxLongevity)
		vitals.Baseline = float32(cfg.MaxLongevity)
	}

	think.PendingAttack = out.TryAttack

	// Phase-preserving think-timer reset: subtract one interval rather
	// than zeroing, so a think that fires slightly late doesn't lose the
	// overshoot (spec.md §4.E, §9).
	think.Timer -= float32(cfg.ThinkInterval)

	// Edge-triggered immediate think on entering a Food or Nest cell: pin
	// the timer at the due threshold so the scheduler's next due-check
	// fires regardless of how little phase has accumulated.
	if (onFood && !think.OnFood) || (onNest && !think.OnNest) {
		think.Timer = float32(cfg.ThinkInterval)
	}
	think.OnFood = onFood
	think.OnNest = onNest
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle wraps a radian angle into (-pi, pi], per spec.md §4.E.
func normalizeAngle(a float32) float32 {
	const pi = math.Pi
	for a > pi {
		a -= 2 * pi
	}
	for a <= -pi {
		a += 2 * pi
	}
	return a
}
