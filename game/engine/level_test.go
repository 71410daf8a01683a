package engine

import (
	"testing"
)

func TestNewLevel_NormalizesMarkers(t *testing.T) {
	source := [][]int{
		{1, 1, 1, 1},
		{1, 2, 4, 1},
		{1, 4, 2, 3},
	}
	level, err := NewLevel(source)
	if err != nil {
		t.Fatalf("NewLevel failed: %v", err)
	}

	start, ok := level.Start()
	if !ok || start != (Position{Row: 1, Col: 1}) {
		t.Errorf("Expected first start at (1,1), got %+v (found=%v)", start, ok)
	}
	spawn, ok := level.EnemySpawn()
	if !ok || spawn != (Position{Row: 1, Col: 2}) {
		t.Errorf("Expected first spawn at (1,2), got %+v (found=%v)", spawn, ok)
	}

	if level.KindAt(start) != Floor || level.KindAt(spawn) != Floor {
		t.Error("Recorded markers should be rewritten to floor")
	}
	// duplicates beyond the first are left alone
	if level.KindAt(Position{Row: 2, Col: 2}) != Start {
		t.Errorf("Expected second start marker to remain, got %s", level.KindAt(Position{Row: 2, Col: 2}))
	}

	if source[1][1] != 2 || source[1][2] != 4 {
		t.Error("NewLevel must not modify the source grid")
	}

	if !level.IsEnemySpawnCell(spawn) {
		t.Error("IsEnemySpawnCell should match the recorded spawn")
	}
	if level.IsEnemySpawnCell(Position{Row: 2, Col: 1}) {
		t.Error("IsEnemySpawnCell should only match the recorded spawn")
	}
}

func TestNewLevel_Errors(t *testing.T) {
	tests := []struct {
		name string
		grid [][]int
	}{
		{"empty", [][]int{}},
		{"empty row", [][]int{{}}},
		{"ragged", [][]int{{0, 0}, {0}}},
		{"negative value", [][]int{{0, -1}}},
		{"value too large", [][]int{{0, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLevel(tt.grid); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLevel_Queries(t *testing.T) {
	level, err := NewLevel([][]int{
		{0, 1, 3},
		{0, 0, 0},
	})
	if err != nil {
		t.Fatalf("NewLevel failed: %v", err)
	}

	if level.Rows() != 2 || level.Cols() != 3 {
		t.Errorf("Expected 2x3, got %dx%d", level.Rows(), level.Cols())
	}
	if w, h := level.PixelSize(120); w != 360 || h != 240 {
		t.Errorf("Expected 360x240, got %dx%d", w, h)
	}

	tests := []struct {
		pos      Position
		inBounds bool
		walkable bool
	}{
		{Position{Row: 0, Col: 0}, true, true},
		{Position{Row: 0, Col: 1}, true, false},
		{Position{Row: 0, Col: 2}, true, true},
		{Position{Row: -1, Col: 0}, false, false},
		{Position{Row: 2, Col: 0}, false, false},
		{Position{Row: 0, Col: 3}, false, false},
	}
	for _, tt := range tests {
		if got := level.InBounds(tt.pos); got != tt.inBounds {
			t.Errorf("InBounds(%+v) = %v, expected %v", tt.pos, got, tt.inBounds)
		}
		if got := level.Walkable(tt.pos); got != tt.walkable {
			t.Errorf("Walkable(%+v) = %v, expected %v", tt.pos, got, tt.walkable)
		}
	}

	if !level.IsGoal(Position{Row: 0, Col: 2}) {
		t.Error("Expected goal at (0,2)")
	}
	if _, ok := level.Start(); ok {
		t.Error("Expected no start marker")
	}
	if level.PlayerSpawn() != FallbackStart {
		t.Errorf("Expected fallback spawn, got %+v", level.PlayerSpawn())
	}
	if level.Count(Floor) != 4 {
		t.Errorf("Expected 4 floor cells, got %d", level.Count(Floor))
	}
}
