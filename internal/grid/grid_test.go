package grid

import (
	"testing"

	"github.com/obeeron/pherowar/internal/ids"
)

func TestConsumeFoodRevertsToEmptyAndReportsZero(t *testing.T) {
	g := New(4, 4)
	if err := g.SetCell(1, 1, Cell{Kind: Food, FoodAmount: 1}); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	taken := g.ConsumeFood(1, 1, 1)
	if taken != 1 {
		t.Fatalf("ConsumeFood taken = %d, want 1", taken)
	}

	c := g.CellAt(1, 1)
	if c.Kind != Empty {
		t.Fatalf("cell kind after last unit = %v, want Empty", c.Kind)
	}
	if c.Kind == Food && c.FoodAmount > 0 {
		t.Fatalf("is_on_food should read false on the depletion tick")
	}
}

func TestConsumeFoodPartial(t *testing.T) {
	g := New(2, 2)
	g.SetCell(0, 0, Cell{Kind: Food, FoodAmount: 5})

	if taken := g.ConsumeFood(0, 0, 2); taken != 2 {
		t.Fatalf("taken = %d, want 2", taken)
	}
	if c := g.CellAt(0, 0); c.FoodAmount != 3 || c.Kind != Food {
		t.Fatalf("cell after partial consume = %+v", c)
	}
}

func TestConsumeFoodOnNonFoodCellIsNoop(t *testing.T) {
	g := New(2, 2)
	if taken := g.ConsumeFood(0, 0, 1); taken != 0 {
		t.Fatalf("taken = %d, want 0", taken)
	}
}

func TestOutOfBoundsReadsAsWall(t *testing.T) {
	g := New(2, 2)
	c := g.CellAt(-1, 0)
	if c.Kind != Wall {
		t.Fatalf("out-of-bounds kind = %v, want Wall", c.Kind)
	}
	if g.IsPassable(5, 5) {
		t.Fatalf("out-of-bounds cell should not be passable")
	}
}

func TestNestRegistryAndRemoval(t *testing.T) {
	g := New(5, 5)
	colony := ids.ColonyID(0)
	if err := g.AddNest(colony, 1, 1); err != nil {
		t.Fatalf("AddNest: %v", err)
	}
	if err := g.AddNest(colony, 2, 1); err != nil {
		t.Fatalf("AddNest: %v", err)
	}

	nests := g.NestsOf(colony)
	if len(nests) != 2 {
		t.Fatalf("NestsOf len = %d, want 2", len(nests))
	}

	g.RemoveColony(colony)
	if len(g.NestsOf(colony)) != 0 {
		t.Fatalf("NestsOf after removal should be empty")
	}
	if c := g.CellAt(1, 1); c.Kind != Empty {
		t.Fatalf("former nest cell kind = %v, want Empty", c.Kind)
	}
}

func TestSetCellOutOfBoundsErrors(t *testing.T) {
	g := New(2, 2)
	if err := g.SetCell(10, 10, Cell{Kind: Wall}); err == nil {
		t.Fatalf("expected error for out-of-bounds SetCell")
	}
}

func TestRayMarchStopsAtWall(t *testing.T) {
	g := New(10, 10)
	g.SetCell(5, 0, Cell{Kind: Wall})

	var hit bool
	var hitDist float64
	g.RayMarch(0.5, 0.5, 0, 10, func(x, y int, dist float64) bool {
		if x == 5 && y == 0 {
			hit = true
			hitDist = dist
		}
		return false
	})
	if !hit {
		t.Fatalf("expected ray to reach the wall cell")
	}
	if hitDist < 4 || hitDist > 5 {
		t.Fatalf("hitDist = %v, want ~4.5", hitDist)
	}
}

func TestLineOfSightBlockedByWall(t *testing.T) {
	g := New(10, 10)
	g.SetCell(3, 0, Cell{Kind: Wall})

	if g.LineOfSight(0.5, 0.5, 6, 0) {
		t.Fatalf("expected line of sight to be blocked by intervening wall")
	}
	if !g.LineOfSight(0.5, 0.5, 1, 0) {
		t.Fatalf("expected clear line of sight to a near cell")
	}
}
