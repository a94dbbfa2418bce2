// Package combat implements the fight-list state machine: engagement,
// auto-facing, simultaneous damage, death handling, and killer
// rejuvenation (spec.md component F).
package combat

import (
	"math"

	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/sensing"
)

// Resolver evaluates engagement and damage against a shared ant pool.
type Resolver struct {
	pool     *antpool.Pool
	grid     *grid.Grid
	sensing  *sensing.Sensing
	antCfg   *config.AntConfig
	senseCfg *config.SenseConfig

	lastKills []KillRecord
}

// KillRecord names one kill resolved during the most recent Resolve
// call, with both ants' colonies captured before the victim was
// removed from the pool (telemetry attribution).
type KillRecord struct {
	Killer, Victim             ids.AntID
	KillerColony, VictimColony ids.ColonyID
}

// LastKills returns the kills resolved during the most recent Resolve
// call. Valid until the next Resolve call.
func (r *Resolver) LastKills() []KillRecord { return r.lastKills }

// New creates a Resolver. sensing supplies the "most recently sensed
// enemy" fallback target for the engagement rule.
func New(pool *antpool.Pool, g *grid.Grid, s *sensing.Sensing, antCfg *config.AntConfig, senseCfg *config.SenseConfig) *Resolver {
	return &Resolver{pool: pool, grid: g, sensing: s, antCfg: antCfg, senseCfg: senseCfg}
}

// Engage evaluates the engagement rule for every ant with
// pending_attack=true that isn't already fighting: find a target —
// enemy in the same cell, else the most recently sensed enemy still in
// reach — and, if one exists, mutually engage (spec.md §4.F).
func (r *Resolver) Engage() {
	index := buildPositionIndex(r.pool)

	r.pool.ForEach(func(id ids.AntID) {
		think := r.pool.ThinkState(id)
		if !think.PendingAttack {
			return
		}
		fight := r.pool.FightState(id)
		if len(fight.Opponents) > 0 {
			return
		}
		identity := r.pool.Identity(id)
		pos := r.pool.Position(id)
		cell := grid.Coord{X: int(math.Floor(float64(pos.X))), Y: int(math.Floor(float64(pos.Y)))}

		target, ok := nearestEnemyInCell(index[cell], identity.Colony)
		if !ok {
			target, ok = r.reachableLastSensedEnemy(id, identity.Colony, pos)
		}
		if !ok {
			return
		}

		r.mutuallyEngage(id, target)
	})
}

func (r *Resolver) reachableLastSensedEnemy(self ids.AntID, colony ids.ColonyID, pos *antpool.Position) (ids.AntID, bool) {
	target, ok := r.sensing.LastSensedEnemy(self)
	if !ok || !r.pool.Has(target) {
		return 0, false
	}
	if r.pool.Identity(target).Colony == colony {
		return 0, false
	}
	tpos := r.pool.Position(target)
	dist := math.Hypot(float64(tpos.X-pos.X), float64(tpos.Y-pos.Y))
	if dist > r.senseCfg.MaxDistance {
		return 0, false
	}
	return target, true
}

func (r *Resolver) mutuallyEngage(a, b ids.AntID) {
	af := r.pool.FightState(a)
	bf := r.pool.FightState(b)
	if !containsAnt(af.Opponents, b) {
		af.Opponents = append(af.Opponents, b)
	}
	if !containsAnt(bf.Opponents, a) {
		bf.Opponents = append(bf.Opponents, a)
	}
}

func containsAnt(list []ids.AntID, id ids.AntID) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// Resolve runs one combat sub-tick: fighting ants auto-face the head of
// their fight list, mutually-head-matched pairs trade simultaneous
// damage, and dead ants are removed (dropping carried food, rewarding
// their killer, and pruned from every remaining fight list). Returns
// the ids removed this tick.
func (r *Resolver) Resolve() []ids.AntID {
	r.faceTargets()
	r.lastKills = nil

	damage := r.mutualDamagePairs()
	for victim := range damage {
		r.pool.Vitals(victim).Longevity -= float32(r.antCfg.AttackDamage)
	}

	// Determine the full dead set from post-damage longevity before
	// rewarding anyone. In a mutual kill (spec.md §4.F testable property
	// #4) both ants can drop to 0 in the same sub-tick; a killer that
	// died itself this sub-tick earns no rejuvenation, so neither ant
	// survives and the outcome never depends on map iteration order.
	dying := make(map[ids.AntID]bool)
	for victim := range damage {
		if r.pool.Vitals(victim).Longevity <= 0 {
			dying[victim] = true
		}
	}

	var dead []ids.AntID
	for victim := range dying {
		killer := damage[victim]
		r.lastKills = append(r.lastKills, KillRecord{
			Killer:       killer,
			Victim:       victim,
			KillerColony: r.pool.Identity(killer).Colony,
			VictimColony: r.pool.Identity(victim).Colony,
		})
		if !dying[killer] {
			r.rewardKiller(killer)
		}
		r.dropCarriedFood(victim)
		dead = append(dead, victim)
	}

	for _, victim := range dead {
		r.pruneFromAllFightLists(victim)
		r.pool.Remove(victim)
	}
	return dead
}

// faceTargets snaps every fighting ant's orientation toward the head of
// its fight list.
func (r *Resolver) faceTargets() {
	r.pool.ForEach(func(id ids.AntID) {
		fight := r.pool.FightState(id)
		if len(fight.Opponents) == 0 {
			return
		}
		head := fight.Opponents[0]
		if !r.pool.Has(head) {
			return
		}
		pos := r.pool.Position(id)
		target := r.pool.Position(head)
		heading := r.pool.Heading(id)
		heading.Orientation = float32(math.Atan2(float64(target.Y-pos.Y), float64(target.X-pos.X)))
	})
}

// mutualDamagePairs returns, per victim, the single attacker that is
// mutually head-engaged with it this sub-tick — i.e. the attacker's
// fight-list head is the victim AND the victim's fight-list head is the
// attacker. In a brawl only the pair currently at both heads trades
// damage; queued opponents wait their turn (spec.md §4.F).
func (r *Resolver) mutualDamagePairs() map[ids.AntID]ids.AntID {
	damage := make(map[ids.AntID]ids.AntID)
	r.pool.ForEach(func(id ids.AntID) {
		fight := r.pool.FightState(id)
		if len(fight.Opponents) == 0 {
			return
		}
		head := fight.Opponents[0]
		if !r.pool.Has(head) {
			return
		}
		theirFight := r.pool.FightState(head)
		if len(theirFight.Opponents) == 0 || theirFight.Opponents[0] != id {
			return
		}
		damage[head] = id
	})
	return damage
}

// rewardKiller grants killer rejuvenation equal to half the longevity
// it has lost since spawn or its last rejuvenation event, clamped to
// MAX_ANT_LONGEVITY (spec.md §4.F).
func (r *Resolver) rewardKiller(killer ids.AntID) {
	if !r.pool.Has(killer) {
		return
	}
	vitals := r.pool.Vitals(killer)
	lost := vitals.Baseline - vitals.Longevity
	if lost <= 0 {
		return
	}
	vitals.Longevity += lost / 2
	if max := float32(r.antCfg.MaxLongevity); vitals.Longevity > max {
		vitals.Longevity = max
	}
	vitals.Baseline = vitals.Longevity
}

func (r *Resolver) dropCarriedFood(victim ids.AntID) {
	vitals := r.pool.Vitals(victim)
	if !vitals.Carrying {
		return
	}
	pos := r.pool.Position(victim)
	x, y := int(math.Floor(float64(pos.X))), int(math.Floor(float64(pos.Y)))
	if r.grid.CellAt(x, y).Kind == grid.Wall {
		return
	}
	r.grid.DropFood(x, y, 1)
}

func (r *Resolver) pruneFromAllFightLists(victim ids.AntID) {
	r.pool.ForEach(func(id ids.AntID) {
		fight := r.pool.FightState(id)
		fight.Opponents = removeAnt(fight.Opponents, victim)
	})
}

func removeAnt(list []ids.AntID, id ids.AntID) []ids.AntID {
	out := list[:0]
	for _, x := range list {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

type posIndexEntry struct {
	id     ids.AntID
	colony ids.ColonyID
}

func buildPositionIndex(pool *antpool.Pool) map[grid.Coord][]posIndexEntry {
	index := make(map[grid.Coord][]posIndexEntry)
	pool.ForEach(func(id ids.AntID) {
		pos := pool.Position(id)
		identity := pool.Identity(id)
		c := grid.Coord{X: int(math.Floor(float64(pos.X))), Y: int(math.Floor(float64(pos.Y)))}
		index[c] = append(index[c], posIndexEntry{id: id, colony: identity.Colony})
	})
	return index
}

func nearestEnemyInCell(entries []posIndexEntry, colony ids.ColonyID) (ids.AntID, bool) {
	var best ids.AntID
	found := false
	for _, e := range entries {
		if e.colony == colony {
			continue
		}
		if !found || e.id < best {
			best = e.id
			found = true
		}
	}
	return best, found
}
