package mapfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obeeron/pherowar/internal/grid"
)

func TestParseWallsFoodAndNestGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.map")
	content := "; a comment line\n#####\n#0.F#\n#####\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Width != 5 || m.Height != 3 {
		t.Fatalf("dims = %dx%d, want 5x3", m.Width, m.Height)
	}

	g := grid.New(m.Width, m.Height)
	if err := m.Apply(g); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if g.CellAt(0, 0).Kind != grid.Wall {
		t.Fatalf("corner = %v, want Wall", g.CellAt(0, 0).Kind)
	}
	if g.CellAt(3, 1).Kind != grid.Food || g.CellAt(3, 1).FoodAmount != DefaultFoodAmount {
		t.Fatalf("food cell = %+v, want Food/%d", g.CellAt(3, 1), DefaultFoodAmount)
	}

	nests, ok := m.NestGroups[0]
	if !ok || len(nests) != 1 || nests[0] != (grid.Coord{X: 1, Y: 1}) {
		t.Fatalf("NestGroups[0] = %v, want [{1 1}]", nests)
	}
}

func TestParseRejectsRaggedRows(t *testing.T) {
	_, err := parse(strings.NewReader("###\n##\n"))
	if err == nil {
		t.Fatalf("expected an error for ragged rows")
	}
}

func TestParseRejectsUnknownCells(t *testing.T) {
	_, err := parse(strings.NewReader("#?#\n"))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized cell symbol")
	}
}

func TestEmptyProducesAllEmptyCellsWithNoNests(t *testing.T) {
	m := Empty(4, 3)
	g := grid.New(4, 3)
	if err := m.Apply(g); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if g.CellAt(2, 1).Kind != grid.Empty {
		t.Fatalf("cell = %v, want Empty", g.CellAt(2, 1).Kind)
	}
	if len(m.NestGroups) != 0 {
		t.Fatalf("NestGroups = %v, want empty", m.NestGroups)
	}
}

func TestFindFirstReturnsOkFalseOnEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if _, ok := FindFirst(dir); ok {
		t.Fatalf("FindFirst on empty dir returned ok=true")
	}
}

func TestFindFirstReturnsAFileWhenPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.map")
	if err := os.WriteFile(path, []byte("#\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, ok := FindFirst(dir)
	if !ok || got != path {
		t.Fatalf("FindFirst = (%q,%v), want (%q,true)", got, ok, path)
	}
}
