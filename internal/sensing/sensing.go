// Package sensing computes each ant's AntInput — forward-arc ray/cone
// queries with occlusion, cell-local reads, and the direct colony sense
// (spec.md component D: Sensing).
package sensing

import (
	"math"

	"github.com/obeeron/pherowar/internal/abi"
	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/pheromone"
)

// Sensing computes AntInput snapshots against a fixed world state. Call
// RebuildIndex once at the start of a tick's think phase, before any
// BuildInput calls, so every ant that thinks this tick senses the same
// immutable snapshot (spec.md §5: "no world state is mutated during
// think calls").
type Sensing struct {
	grid  *grid.Grid
	field *pheromone.Field
	pool  *antpool.Pool
	cfg   *config.SenseConfig

	posIndex map[grid.Coord][]antRef

	// lastEnemy remembers, per ant, the most recently sensed enemy ant —
	// internal engine bookkeeping for the Combat engagement rule's
	// "most recently sensed enemy still in reach" clause (spec.md §4.F).
	// It is never transmitted over the wire; AntInput only carries the
	// bearing/distance pair.
	lastEnemy map[ids.AntID]ids.AntID
}

type antRef struct {
	id     ids.AntID
	colony ids.ColonyID
}

// New creates a Sensing pipeline over the given world state.
func New(g *grid.Grid, field *pheromone.Field, pool *antpool.Pool, cfg *config.SenseConfig) *Sensing {
	return &Sensing{grid: g, field: field, pool: pool, cfg: cfg, lastEnemy: make(map[ids.AntID]ids.AntID)}
}

// LastSensedEnemy returns the most recent enemy ant id observed by
// enemySense for id, if any has ever been recorded. The entry persists
// across ticks where no enemy is currently sensed, so combat can still
// find "the most recently sensed enemy" per spec.md §4.F.
func (s *Sensing) LastSensedEnemy(id ids.AntID) (ids.AntID, bool) {
	target, ok := s.lastEnemy[id]
	return target, ok
}

// RebuildIndex snapshots every live ant's cell position for this tick's
// sensing pass (same-cell and forward-arc enemy lookups).
func (s *Sensing) RebuildIndex() {
	s.posIndex = make(map[grid.Coord][]antRef)
	s.pool.ForEach(func(id ids.AntID) {
		pos := s.pool.Position(id)
		identity := s.pool.Identity(id)
		c := grid.Coord{X: int(math.Floor(float64(pos.X))), Y: int(math.Floor(float64(pos.Y)))}
		s.posIndex[c] = append(s.posIndex[c], antRef{id: id, colony: identity.Colony})
	})
}

// BuildInput computes the AntInput for one ant against the current
// snapshot.
func (s *Sensing) BuildInput(id ids.AntID) abi.AntInput {
	pos := s.pool.Position(id)
	heading := s.pool.Heading(id)
	vitals := s.pool.Vitals(id)
	identity := s.pool.Identity(id)
	fight := s.pool.FightState(id)

	cx := int(math.Floor(float64(pos.X)))
	cy := int(math.Floor(float64(pos.Y)))
	cell := s.grid.CellAt(cx, cy)

	in := abi.AntInput{
		IsCarryingFood: vitals.Carrying,
		IsOnColony:     cell.Kind == grid.Nest && cell.NestOwner == identity.Colony,
		IsOnFood:       cell.Kind == grid.Food && cell.FoodAmount > 0,
		Longevity:      vitals.Longevity,
		IsFighting:     len(fight.Opponents) > 0,
	}

	ox, oy := float64(pos.X), float64(pos.Y)
	orientation := float64(heading.Orientation)
	maxDist := s.cfg.MaxDistance
	maxAngle := s.cfg.MaxAngle
	rays := s.cfg.RaysPerArc

	for ch := 0; ch < pheromone.ChannelCount; ch++ {
		sense := s.field.SampleArc(identity.Colony, s.grid, ox, oy, orientation, ch, maxDist, maxAngle, rays)
		in.PheromoneSenses[ch] = abi.PheromoneSense{Angle: float32(sense.Angle), Strength: float32(sense.Strength)}
	}

	raw := s.field.SampleCell(identity.Colony, cx, cy)
	in.CellSense = raw

	in.WallSense = toDirectional(scanArc(s.grid, ox, oy, orientation, maxAngle, maxDist, rays, func(x, y int) bool {
		return !s.grid.IsPassable(x, y)
	}))

	in.FoodSense = toDirectional(scanArc(s.grid, ox, oy, orientation, maxAngle, maxDist, rays, func(x, y int) bool {
		c := s.grid.CellAt(x, y)
		return c.Kind == grid.Food && c.FoodAmount > 0
	}))

	in.ColonySense = s.colonySense(identity.Colony, ox, oy, maxDist)

	in.EnemySense = s.enemySense(id, identity.Colony, cx, cy, ox, oy, orientation, maxAngle, maxDist, rays)

	return in
}

// arcHit is the best (nearest, then smallest-bearing) match found while
// scanning a forward arc.
type arcHit struct {
	found bool
	angle float64
	dist  float64
}

func toDirectional(h arcHit) abi.DirectionalSense {
	if !h.found {
		return abi.DirectionalSense{Angle: 0, Distance: -1.0}
	}
	return abi.DirectionalSense{Angle: float32(h.angle), Distance: float32(h.dist)}
}

// scanArc casts rayCount rays evenly spaced across
// [orientation-maxAngle, orientation+maxAngle], stepping one cell at a
// time up to maxDist and stopping each ray at the first cell matching
// match (walls terminate a ray regardless of match, via grid.RayMarch's
// own occlusion rule). Among all rays' first matches, returns the
// nearest; ties break on the smallest absolute relative angle, per
// spec.md §4.D's tie-break rule.
func scanArc(g *grid.Grid, ox, oy, orientation, maxAngle, maxDist float64, rayCount int, match func(x, y int) bool) arcHit {
	var best arcHit
	if rayCount < 2 {
		return best
	}
	for i := 0; i < rayCount; i++ {
		offset := -maxAngle + float64(i)*(2*maxAngle)/float64(rayCount-1)
		rayAngle := orientation + offset

		g.RayMarch(ox, oy, rayAngle, maxDist, func(x, y int, dist float64) bool {
			if !match(x, y) {
				return false
			}
			if !best.found || dist < best.dist || (dist == best.dist && math.Abs(offset) < math.Abs(best.angle)) {
				best = arcHit{found: true, angle: offset, dist: dist}
			}
			return true
		})
	}
	return best
}

// colonySense is a direct (non-arc-restricted) query for the nearest
// own-nest cell with unblocked line of sight, per spec.md §4.D.6.
func (s *Sensing) colonySense(colony ids.ColonyID, ox, oy, maxDist float64) abi.DirectionalSense {
	nests := s.grid.NestsOf(colony)
	var best arcHit
	for _, n := range nests {
		dx := float64(n.X) + 0.5 - ox
		dy := float64(n.Y) + 0.5 - oy
		dist := math.Hypot(dx, dy)
		if dist > maxDist {
			continue
		}
		if !s.grid.LineOfSight(ox, oy, n.X, n.Y) {
			continue
		}
		angle := math.Atan2(dy, dx)
		if !best.found || dist < best.dist {
			best = arcHit{found: true, angle: angle, dist: dist}
		}
	}
	return toDirectional(best)
}

// enemySense returns (0,0) if an enemy occupies the same cell, else the
// nearest enemy in the forward arc, wall-occluded. Either way, the
// matched enemy's id (smallest among ties) is remembered for the
// combat engagement rule via lastEnemy.
func (s *Sensing) enemySense(self ids.AntID, colony ids.ColonyID, cx, cy int, ox, oy, orientation, maxAngle, maxDist float64, rayCount int) abi.DirectionalSense {
	if target, ok := nearestEnemyInCell(s.posIndex[grid.Coord{X: cx, Y: cy}], colony); ok {
		s.lastEnemy[self] = target
		return abi.DirectionalSense{Angle: 0, Distance: 0}
	}

	var best arcHit
	var bestTarget ids.AntID
	if rayCount >= 2 {
		for i := 0; i < rayCount; i++ {
			offset := -maxAngle + float64(i)*(2*maxAngle)/float64(rayCount-1)
			rayAngle := orientation + offset

			s.grid.RayMarch(ox, oy, rayAngle, maxDist, func(x, y int, dist float64) bool {
				target, ok := nearestEnemyInCell(s.posIndex[grid.Coord{X: x, Y: y}], colony)
				if !ok {
					return false
				}
				if !best.found || dist < best.dist || (dist == best.dist && math.Abs(offset) < math.Abs(best.angle)) {
					best = arcHit{found: true, angle: offset, dist: dist}
					bestTarget = target
				}
				return true
			})
		}
	}
	if best.found {
		s.lastEnemy[self] = bestTarget
	}
	return toDirectional(best)
}

// nearestEnemyInCell returns the smallest-id ant of a different colony
// among refs, for deterministic tie-breaking (spec.md §4.D's "stable
// ordering by entity id").
func nearestEnemyInCell(refs []antRef, colony ids.ColonyID) (ids.AntID, bool) {
	var best ids.AntID
	found := false
	for _, ref := range refs {
		if ref.colony == colony {
			continue
		}
		if !found || ref.id < best {
			best = ref.id
			found = true
		}
	}
	return best, found
}
