package antpool

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/obeeron/pherowar/internal/ids"
)

// Pool owns every ant's storage and lifecycle. Ant identities
// (ids.AntID) are stable for the ant's lifetime; the underlying ark
// entity is an implementation detail callers never see.
type Pool struct {
	world *ecs.World

	mapper *ecs.Map7[Position, Heading, Vitals, Memory, ThinkState, FightState, Identity]
	filter *ecs.Filter7[Position, Heading, Vitals, Memory, ThinkState, FightState, Identity]

	posMap      *ecs.Map1[Position]
	headingMap  *ecs.Map1[Heading]
	vitalsMap   *ecs.Map1[Vitals]
	memoryMap   *ecs.Map1[Memory]
	thinkMap    *ecs.Map1[ThinkState]
	fightMap    *ecs.Map1[FightState]
	identityMap *ecs.Map1[Identity]

	byID   map[ids.AntID]ecs.Entity
	nextID ids.AntID
}

// New creates an empty ant pool.
func New() *Pool {
	world := ecs.NewWorld()
	return &Pool{
		world: world,
		mapper: ecs.NewMap7[Position, Heading, Vitals, Memory, ThinkState, FightState, Identity](world),
		filter: ecs.NewFilter7[Position, Heading, Vitals, Memory, ThinkState, FightState, Identity](world),

		posMap:      ecs.NewMap1[Position](world),
		headingMap:  ecs.NewMap1[Heading](world),
		vitalsMap:   ecs.NewMap1[Vitals](world),
		memoryMap:   ecs.NewMap1[Memory](world),
		thinkMap:    ecs.NewMap1[ThinkState](world),
		fightMap:    ecs.NewMap1[FightState](world),
		identityMap: ecs.NewMap1[Identity](world),

		byID: make(map[ids.AntID]ecs.Entity),
	}
}

// Spawn creates a new ant at the given position for colony, with a
// uniformly random orientation, zeroed memory, full longevity, and
// is_carrying_food=false — the lifecycle spec.md §3 mandates.
func (p *Pool) Spawn(colony ids.ColonyID, x, y, maxLongevity float32, rng *rand.Rand) ids.AntID {
	id := p.nextID
	p.nextID++

	pos := Position{X: x, Y: y}
	heading := Heading{Orientation: rng.Float32() * 2 * math.Pi}
	vitals := Vitals{Longevity: maxLongevity, Baseline: maxLongevity, Carrying: false}
	memory := Memory{}
	think := ThinkState{Timer: 0, PendingAttack: false}
	fight := FightState{}
	identity := Identity{ID: id, Colony: colony}

	entity := p.mapper.NewEntity(&pos, &heading, &vitals, &memory, &think, &fight, &identity)
	p.byID[id] = entity
	return id
}

// Remove destroys an ant. The caller is responsible for any drop-food
// or fight-list cleanup before calling this (see internal/combat and
// internal/colony), matching ark's convention of plain component
// storage with no destructor hooks.
func (p *Pool) Remove(id ids.AntID) {
	entity, ok := p.byID[id]
	if !ok {
		return
	}
	p.mapper.Remove(entity)
	delete(p.byID, id)
}

// Has reports whether id currently refers to a live ant.
func (p *Pool) Has(id ids.AntID) bool {
	_, ok := p.byID[id]
	return ok
}

// Count returns the number of live ants.
func (p *Pool) Count() int {
	return len(p.byID)
}

func (p *Pool) entity(id ids.AntID) (ecs.Entity, bool) {
	e, ok := p.byID[id]
	return e, ok
}

// Position returns a pointer to id's position for in-place mutation, or
// nil if id is not a live ant.
func (p *Pool) Position(id ids.AntID) *Position {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.posMap.Get(e)
}

// Heading returns a pointer to id's heading.
func (p *Pool) Heading(id ids.AntID) *Heading {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.headingMap.Get(e)
}

// Vitals returns a pointer to id's vitals.
func (p *Pool) Vitals(id ids.AntID) *Vitals {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.vitalsMap.Get(e)
}

// MemoryOf returns a pointer to id's AI scratch memory.
func (p *Pool) MemoryOf(id ids.AntID) *Memory {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.memoryMap.Get(e)
}

// ThinkState returns a pointer to id's think-tick state.
func (p *Pool) ThinkState(id ids.AntID) *ThinkState {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.thinkMap.Get(e)
}

// FightState returns a pointer to id's fight list.
func (p *Pool) FightState(id ids.AntID) *FightState {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.fightMap.Get(e)
}

// Identity returns a pointer to id's identity (id + owning colony).
func (p *Pool) Identity(id ids.AntID) *Identity {
	e, ok := p.entity(id)
	if !ok {
		return nil
	}
	return p.identityMap.Get(e)
}

// ForEach invokes fn once for every live ant, in unspecified order —
// callers must not rely on ordering (spec.md §4.H/§5).
func (p *Pool) ForEach(fn func(id ids.AntID)) {
	query := p.filter.Query()
	for query.Next() {
		_, _, _, _, _, _, identity := query.Get()
		fn(identity.ID)
	}
}

// ForEachInColony invokes fn once for every live ant owned by colony.
func (p *Pool) ForEachInColony(colony ids.ColonyID, fn func(id ids.AntID)) {
	query := p.filter.Query()
	for query.Next() {
		_, _, _, _, _, _, identity := query.Get()
		if identity.Colony == colony {
			fn(identity.ID)
		}
	}
}
