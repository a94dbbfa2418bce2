// Package grid implements PheroWar's static terrain and mutable food/nest
// state (spec.md component A: Grid & Map).
package grid

import (
	"fmt"
	"math"

	"github.com/obeeron/pherowar/internal/ids"
)

// Kind enumerates the static+dynamic cell type.
type Kind uint8

const (
	Empty Kind = iota
	Wall
	Food
	Nest
)

// Coord is an integer cell coordinate.
type Coord struct {
	X, Y int
}

// Cell is the per-cell state: terrain kind plus the dynamic fields that
// only apply to some kinds (FoodAmount for Food, NestOwner for Nest).
type Cell struct {
	Kind       Kind
	FoodAmount uint16
	NestOwner  ids.ColonyID
}

// Grid is a fixed-size rectangular map of Cells.
type Grid struct {
	width, height int
	cells         []Cell
	nests         map[ids.ColonyID][]Coord
}

// New creates an all-Empty grid of the given dimensions.
func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		nests:  make(map[ids.ColonyID][]Coord),
	}
}

// Width returns the grid's column count.
func (g *Grid) Width() int { return g.width }

// Height returns the grid's row count.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x,y) is a valid cell coordinate.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *Grid) index(x, y int) int { return y*g.width + x }

// CellAt returns the cell at (x,y). Out-of-bounds coordinates read back
// as a Wall cell, so sensing/movement code can treat the map edge like
// any other occluding wall without a separate bounds check.
func (g *Grid) CellAt(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{Kind: Wall, NestOwner: ids.NoColony}
	}
	return g.cells[g.index(x, y)]
}

// SetCell overwrites the cell at (x,y). Used by map ingest and tests;
// the simulation's own mutation paths go through ConsumeFood and the
// nest registry instead.
func (g *Grid) SetCell(x, y int, c Cell) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("grid: SetCell(%d,%d) out of bounds (%dx%d)", x, y, g.width, g.height)
	}
	g.cells[g.index(x, y)] = c
	return nil
}

// IsPassable reports whether an ant may occupy (x,y): in bounds and not
// a Wall.
func (g *Grid) IsPassable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.cells[g.index(x, y)].Kind != Wall
}

// ConsumeFood takes up to `amount` units of food from the cell at (x,y),
// returning the amount actually taken. When the cell's food reaches zero
// it reverts to Empty so that a same-tick IsOnFood read after the last
// unit is taken observes false, per spec.md §4.A.
func (g *Grid) ConsumeFood(x, y int, amount uint16) (taken uint16) {
	if !g.InBounds(x, y) {
		return 0
	}
	idx := g.index(x, y)
	c := &g.cells[idx]
	if c.Kind != Food || c.FoodAmount == 0 {
		return 0
	}
	if amount > c.FoodAmount {
		amount = c.FoodAmount
	}
	c.FoodAmount -= amount
	if c.FoodAmount == 0 {
		c.Kind = Empty
	}
	return amount
}

// DropFood deposits amount units of food at (x,y), converting an Empty
// cell to Food or adding to an existing Food cell's stock. A no-op on
// Wall or Nest cells, matching "drop onto current cell (unless Wall)"
// from spec.md §4.F — Nest cells have no food stock of their own.
func (g *Grid) DropFood(x, y int, amount uint16) {
	if !g.InBounds(x, y) || amount == 0 {
		return
	}
	idx := g.index(x, y)
	c := &g.cells[idx]
	switch c.Kind {
	case Empty:
		c.Kind = Food
		c.FoodAmount = amount
	case Food:
		c.FoodAmount += amount
	}
}

// AddNest registers (x,y) as a nest cell owned by colony, setting the
// cell kind to Nest.
func (g *Grid) AddNest(colony ids.ColonyID, x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("grid: AddNest(%d,%d) out of bounds (%dx%d)", x, y, g.width, g.height)
	}
	g.cells[g.index(x, y)] = Cell{Kind: Nest, NestOwner: colony}
	g.nests[colony] = append(g.nests[colony], Coord{X: x, Y: y})
	return nil
}

// NestsOf returns the nest cells owned by colony, in stable (insertion)
// order. The returned slice is owned by the grid; callers must not
// mutate it.
func (g *Grid) NestsOf(colony ids.ColonyID) []Coord {
	return g.nests[colony]
}

// RayMarch steps outward from (ox,oy) along angle in 1-cell increments up
// to maxDist, calling visit for each stepped-into cell. It stops early
// when visit returns true, or unconditionally once it steps into a Wall
// cell (occlusion) — the wall cell itself is still passed to visit first,
// so a caller looking for the nearest wall sees it. Deterministic given a
// fixed angle, per spec.md's "fixed ray set, step one cell at a time"
// occlusion design.
func (g *Grid) RayMarch(ox, oy, angle, maxDist float64, visit func(x, y int, dist float64) (stop bool)) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	steps := int(maxDist)
	for s := 1; s <= steps; s++ {
		dist := float64(s)
		x := int(math.Floor(ox + dx*dist))
		y := int(math.Floor(oy + dy*dist))
		if visit(x, y, dist) {
			return
		}
		if !g.IsPassable(x, y) {
			return
		}
	}
}

// LineOfSight reports whether (tx,ty) is visible from (ox,oy): no Wall
// cell lies strictly between the two points. Used by colony_sense, which
// is a direct (non-arc-restricted) query per spec.md §4.D.6.
func (g *Grid) LineOfSight(ox, oy float64, tx, ty int) bool {
	dx := float64(tx) + 0.5 - ox
	dy := float64(ty) + 0.5 - oy
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		return true
	}
	angle := math.Atan2(dy, dx)
	blocked := false
	g.RayMarch(ox, oy, angle, dist-0.5, func(x, y int, d float64) bool {
		if !g.IsPassable(x, y) {
			blocked = true
			return true
		}
		return false
	})
	return !blocked
}

// RemoveColony clears every cell owned by colony (reverting nests to
// Empty) and drops its nest registry entry, so no dangling ColonyID
// reference survives colony removal (spec.md §4.G Removal).
func (g *Grid) RemoveColony(colony ids.ColonyID) {
	for _, c := range g.nests[colony] {
		idx := g.index(c.X, c.Y)
		if g.cells[idx].NestOwner == colony {
			g.cells[idx] = Cell{Kind: Empty}
		}
	}
	delete(g.nests, colony)
}
