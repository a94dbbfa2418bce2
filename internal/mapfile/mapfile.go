// Package mapfile implements a minimal, line-based text map format — a
// stand-in for the real map editor's file format, which spec.md treats
// as an external collaborator (§1 Non-goals: "map file parser/serializer").
// It satisfies the engine's map-ingest interface: a grid of cell kinds
// plus nest positions, grouped per eventual player.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/obeeron/pherowar/internal/grid"
)

// DefaultFoodAmount seeds an 'F' cell's food stock.
const DefaultFoodAmount = 50

// Map holds a parsed map's terrain plus nest cells grouped by the digit
// that marked them in the source file — one group per eventual player.
type Map struct {
	Width, Height int
	cells         []grid.Cell
	NestGroups    map[int][]grid.Coord
}

// Load reads a map file from path.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapfile: open %s: %w", path, err)
	}
	defer f.Close()
	m, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("mapfile: %s: %w", path, err)
	}
	return m, nil
}

// parse reads one row per line, one byte per column: '#' wall, '.'
// empty, 'F' food (DefaultFoodAmount), '0'-'9' a nest cell belonging to
// that player index. Lines starting with ';' or blank lines are skipped.
func parse(r io.Reader) (*Map, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ";") || strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d: width %d, want %d", i, len(row), width)
		}
	}
	height := len(rows)

	m := &Map{
		Width:      width,
		Height:     height,
		cells:      make([]grid.Cell, width*height),
		NestGroups: make(map[int][]grid.Coord),
	}
	for y, row := range rows {
		for x, ch := range row {
			idx := y*width + x
			switch {
			case ch == '#':
				m.cells[idx] = grid.Cell{Kind: grid.Wall}
			case ch == '.':
				m.cells[idx] = grid.Cell{Kind: grid.Empty}
			case ch == 'F':
				m.cells[idx] = grid.Cell{Kind: grid.Food, FoodAmount: DefaultFoodAmount}
			case ch >= '0' && ch <= '9':
				player := int(ch - '0')
				m.cells[idx] = grid.Cell{Kind: grid.Empty}
				m.NestGroups[player] = append(m.NestGroups[player], grid.Coord{X: x, Y: y})
			default:
				return nil, fmt.Errorf("unrecognized cell %q at (%d,%d)", ch, x, y)
			}
		}
	}
	return m, nil
}

// Empty returns a width×height map of all-Empty cells with no nests —
// the fallback when the CLI is given no --map and the configured maps
// directory is also empty (spec.md §6).
func Empty(width, height int) *Map {
	return &Map{
		Width:      width,
		Height:     height,
		cells:      make([]grid.Cell, width*height),
		NestGroups: make(map[int][]grid.Coord),
	}
}

// Apply writes m's terrain onto g. Nest cells are left Empty here — the
// caller registers them per colony via engine.AddPlayer(soPath,
// m.NestGroups[playerIndex]), which is what actually assigns a ColonyID
// to a nest_owner.
func (m *Map) Apply(g *grid.Grid) error {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if err := g.SetCell(x, y, m.cells[y*m.Width+x]); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindFirst returns the path of the first regular file in dir in
// directory-listing order, or ok=false if dir is empty/unreadable.
func FindFirst(dir string) (path string, ok bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
