package combat

import (
	"math/rand"
	"testing"

	"github.com/obeeron/pherowar/internal/antpool"
	"github.com/obeeron/pherowar/internal/config"
	"github.com/obeeron/pherowar/internal/grid"
	"github.com/obeeron/pherowar/internal/ids"
	"github.com/obeeron/pherowar/internal/pheromone"
	"github.com/obeeron/pherowar/internal/sensing"
)

func testSetup() (*antpool.Pool, *grid.Grid, *sensing.Sensing, *config.AntConfig, *config.SenseConfig) {
	g := grid.New(10, 10)
	field := pheromone.NewField(10, 10)
	field.AddColony(0)
	field.AddColony(1)
	pool := antpool.New()
	senseCfg := &config.SenseConfig{MaxDistance: 5, MaxAngle: 0.78, RaysPerArc: 9}
	s := sensing.New(g, field, pool, senseCfg)
	antCfg := &config.AntConfig{Speed: 4, MaxTurnAngle: 0.78, MaxLongevity: 300, AttackDamage: 5, ThinkInterval: 0.375}
	return pool, g, s, antCfg, senseCfg
}

func TestEngageSameCellFormsMutualFightList(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 5, 5, 300, rng)
	pool.ThinkState(a).PendingAttack = true

	r := New(pool, g, s, antCfg, senseCfg)
	r.Engage()

	if !containsAnt(pool.FightState(a).Opponents, b) {
		t.Fatalf("a's fight list = %v, want to contain b", pool.FightState(a).Opponents)
	}
	if !containsAnt(pool.FightState(b).Opponents, a) {
		t.Fatalf("b's fight list = %v, want to contain a (mutual engagement)", pool.FightState(b).Opponents)
	}
}

func TestEngageNoEnemyNoOp(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	pool.ThinkState(a).PendingAttack = true

	r := New(pool, g, s, antCfg, senseCfg)
	r.Engage()

	if len(pool.FightState(a).Opponents) != 0 {
		t.Fatalf("fight list = %v, want empty with no enemy present", pool.FightState(a).Opponents)
	}
}

func TestResolveAppliesSimultaneousDamage(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	pool.FightState(a).Opponents = []ids.AntID{b}
	pool.FightState(b).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	r.Resolve()

	if pool.Vitals(a).Longevity != 295 {
		t.Fatalf("a.Longevity = %v, want 295", pool.Vitals(a).Longevity)
	}
	if pool.Vitals(b).Longevity != 295 {
		t.Fatalf("b.Longevity = %v, want 295", pool.Vitals(b).Longevity)
	}
}

func TestResolveQueuedOpponentUntouchedUntilHead(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	c := pool.Spawn(1, 7, 5, 300, rng)
	// a fights b (head) and has c queued; b and c both list a as their
	// only opponent, so only the a<->b pair is mutually head-matched.
	pool.FightState(a).Opponents = []ids.AntID{b, c}
	pool.FightState(b).Opponents = []ids.AntID{a}
	pool.FightState(c).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	r.Resolve()

	if pool.Vitals(c).Longevity != 300 {
		t.Fatalf("c.Longevity = %v, want unchanged 300 while queued behind b", pool.Vitals(c).Longevity)
	}
	if pool.Vitals(b).Longevity != 295 {
		t.Fatalf("b.Longevity = %v, want 295", pool.Vitals(b).Longevity)
	}
}

func TestResolveKillsAndRewardsKiller(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	pool.Vitals(b).Longevity = 3
	pool.Vitals(a).Longevity = 200
	pool.Vitals(a).Baseline = 300
	pool.FightState(a).Opponents = []ids.AntID{b}
	pool.FightState(b).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	dead := r.Resolve()

	if len(dead) != 1 || dead[0] != b {
		t.Fatalf("dead = %v, want [b]", dead)
	}
	if pool.Has(b) {
		t.Fatalf("b still present after death")
	}
	// a takes its own 5 damage this sub-tick (195 of 300 baseline), then
	// is rewarded half of what it has lost so far: 195 + 52.5 = 247.5.
	if got, want := pool.Vitals(a).Longevity, float32(247.5); got != want {
		t.Fatalf("a.Longevity = %v, want %v (rejuvenation reward)", got, want)
	}
}

func TestResolveMutualKillNeitherAntRejuvenates(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	pool.Vitals(a).Longevity = 5
	pool.Vitals(a).Baseline = 5
	pool.Vitals(b).Longevity = 5
	pool.Vitals(b).Baseline = 5
	pool.FightState(a).Opponents = []ids.AntID{b}
	pool.FightState(b).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	dead := r.Resolve()

	if len(dead) != 2 {
		t.Fatalf("dead = %v, want both a and b to die (mutual kill, neither rejuvenates)", dead)
	}
	if pool.Has(a) || pool.Has(b) {
		t.Fatalf("a or b survived a mutual kill: pool.Has(a)=%v pool.Has(b)=%v", pool.Has(a), pool.Has(b))
	}
}

func TestResolveDropsCarriedFoodOnDeath(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	pool.Vitals(b).Longevity = 3
	pool.Vitals(b).Carrying = true
	pool.FightState(a).Opponents = []ids.AntID{b}
	pool.FightState(b).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	r.Resolve()

	if cell := g.CellAt(6, 5); cell.Kind != grid.Food || cell.FoodAmount != 1 {
		t.Fatalf("cell at death site = %+v, want Food with 1 unit", cell)
	}
}

func TestResolvePrunesDeadFromOthersFightLists(t *testing.T) {
	pool, g, s, antCfg, senseCfg := testSetup()
	rng := rand.New(rand.NewSource(1))
	a := pool.Spawn(0, 5, 5, 300, rng)
	b := pool.Spawn(1, 6, 5, 300, rng)
	c := pool.Spawn(1, 7, 5, 300, rng)
	pool.Vitals(b).Longevity = 3
	pool.FightState(a).Opponents = []ids.AntID{b, c}
	pool.FightState(b).Opponents = []ids.AntID{a}
	pool.FightState(c).Opponents = []ids.AntID{a}

	r := New(pool, g, s, antCfg, senseCfg)
	r.Resolve()

	if containsAnt(pool.FightState(a).Opponents, b) {
		t.Fatalf("a's fight list still references dead b: %v", pool.FightState(a).Opponents)
	}
	if !containsAnt(pool.FightState(a).Opponents, c) {
		t.Fatalf("a's fight list lost live opponent c: %v", pool.FightState(a).Opponents)
	}
}
