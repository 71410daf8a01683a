package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// noShuffle keeps enemy candidates in declaration order
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

type fakeSurface struct {
	sizes [][2]int
}

func (s *fakeSurface) Resize(w, h int) {
	s.sizes = append(s.sizes, [2]int{w, h})
}

type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) Tile(x, y, size int, kind TileKind) {
	r.calls = append(r.calls, fmt.Sprintf("tile %d,%d %s", x, y, kind))
}

func (r *recordingRenderer) Trail(kind ActorKind, x, y, size int, opacity float64) {
	r.calls = append(r.calls, fmt.Sprintf("trail %s %d,%d", kind, x, y))
}

func (r *recordingRenderer) Actor(kind ActorKind, x, y, size int) {
	r.calls = append(r.calls, fmt.Sprintf("actor %s %d,%d", kind, x, y))
}

func (r *recordingRenderer) Overlay(layout OverlayLayout, title, button string) {
	r.calls = append(r.calls, "overlay "+title+" "+button)
}

func (r *recordingRenderer) HUD(text string) {
	r.calls = append(r.calls, "hud "+text)
}

func createTestConfig(levels ...[][]int) *GameConfig {
	return &GameConfig{
		Name:        "engine-test",
		Description: "Configuration for engine tests",
		TileSize:    10,
		Levels:      levels,
	}
}

var scenarioGrid = [][]int{
	{2, 0, 0},
	{1, 0, 1},
	{0, 0, 3},
}

func TestNewEngine(t *testing.T) {
	surface := &fakeSurface{}
	e, err := NewEngine(createTestConfig(scenarioGrid), t0, WithSurface(surface), WithRand(noShuffle{}))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if e.GetLevelIndex() != 0 || e.GetLevelCount() != 1 {
		t.Errorf("Expected level 0 of 1, got %d of %d", e.GetLevelIndex(), e.GetLevelCount())
	}
	if e.GetPlayerPosition() != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected player at start (0,0), got %+v", e.GetPlayerPosition())
	}
	if _, ok := e.GetEnemyPosition(); ok {
		t.Error("Expected enemy to be inactive without a spawn marker")
	}
	if e.IsGameOver() {
		t.Error("New engine should not be game over")
	}
	if len(surface.sizes) != 1 || surface.sizes[0] != [2]int{30, 30} {
		t.Errorf("Expected surface resized to 30x30, got %v", surface.sizes)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(createTestConfig(), t0)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestEngine_FallbackStart(t *testing.T) {
	grid := [][]int{
		{1, 1, 1},
		{1, 0, 3},
		{1, 1, 1},
	}
	e, err := NewEngine(createTestConfig(grid), t0)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.GetPlayerPosition() != FallbackStart {
		t.Errorf("Expected fallback start %+v, got %+v", FallbackStart, e.GetPlayerPosition())
	}
}

func TestEngine_ScenarioWalkToGoal(t *testing.T) {
	e, err := NewEngine(createTestConfig(scenarioGrid, scenarioGrid), t0, WithRand(noShuffle{}))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	step := e.GetConfig().PlayerCooldown()

	steps := []struct {
		dir      Direction
		moved    bool
		expected Position
	}{
		{Down, false, Position{Row: 0, Col: 0}},
		{Right, true, Position{Row: 0, Col: 1}},
		{Down, true, Position{Row: 1, Col: 1}},
		{Down, true, Position{Row: 2, Col: 1}},
	}

	now := t0
	for i, s := range steps {
		now = now.Add(step)
		if got := e.Move(s.dir, now); got != s.moved {
			t.Fatalf("step %d: Move(%s) = %v, expected %v", i, s.dir, got, s.moved)
		}
		if e.GetPlayerPosition() != s.expected {
			t.Fatalf("step %d: expected %+v, got %+v", i, s.expected, e.GetPlayerPosition())
		}
	}

	now = now.Add(step)
	if !e.Move(Right, now) {
		t.Fatal("Expected move onto goal to succeed")
	}
	if e.GetLevelIndex() != 1 {
		t.Errorf("Expected advance to level 1, got %d", e.GetLevelIndex())
	}
	if e.GetPlayerPosition() != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected player reset to start, got %+v", e.GetPlayerPosition())
	}

	state := e.GetState(now)
	if state.Moves != 4 || state.LevelsCleared != 1 {
		t.Errorf("Expected 4 moves and 1 level cleared, got %d and %d", state.Moves, state.LevelsCleared)
	}
}

func TestEngine_LevelWrap(t *testing.T) {
	corridor := [][]int{{2, 3}}
	surface := &fakeSurface{}
	e, err := NewEngine(createTestConfig(corridor, corridor, corridor), t0, WithSurface(surface))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	now := t0
	for i := 1; i <= 3; i++ {
		now = now.Add(time.Second)
		if !e.Move(Right, now) {
			t.Fatalf("move %d failed", i)
		}
		if e.GetLevelIndex() != i%3 {
			t.Errorf("after %d goals expected level %d, got %d", i, i%3, e.GetLevelIndex())
		}
	}
	if len(surface.sizes) != 4 {
		t.Errorf("Expected a resize per level load, got %d", len(surface.sizes))
	}
}

func TestEngine_MoveThrottle(t *testing.T) {
	grid := [][]int{{2, 0, 0, 0, 0}}
	e, err := NewEngine(createTestConfig(grid), t0)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	tests := []struct {
		offset time.Duration
		moved  bool
	}{
		{10 * time.Millisecond, false},
		{90 * time.Millisecond, true},
		{100 * time.Millisecond, false},
		{179 * time.Millisecond, false},
		{180 * time.Millisecond, true},
	}
	for _, tt := range tests {
		if got := e.Move(Right, t0.Add(tt.offset)); got != tt.moved {
			t.Errorf("Move at +%v = %v, expected %v", tt.offset, got, tt.moved)
		}
	}
	if e.GetPlayerPosition().Col != 2 {
		t.Errorf("Expected player at col 2, got %d", e.GetPlayerPosition().Col)
	}
}

func collisionEngine(t *testing.T) *GameEngine {
	t.Helper()
	// the enemy's only legal move lands on the player
	e, err := NewEngine(createTestConfig([][]int{{2, 0, 4}}), t0, WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestEngine_CollisionEndsGame(t *testing.T) {
	e := collisionEngine(t)
	cooldown := e.GetConfig().EnemyCooldown()

	if e.Tick(t0.Add(cooldown / 2)) {
		t.Error("Enemy should not move before its cooldown")
	}
	if e.IsGameOver() {
		t.Fatal("Game over too early")
	}

	now := t0.Add(cooldown)
	if !e.Tick(now) {
		t.Error("Expected tick to report a change")
	}
	if !e.IsGameOver() {
		t.Fatal("Expected game over on the frame the enemy reaches the player")
	}

	later := now.Add(10 * time.Second)
	if e.Move(Right, later) {
		t.Error("Moves must be ignored while game over")
	}
	e.Tick(later)
	if !e.IsGameOver() {
		t.Error("Game over must persist until restart")
	}
	if e.GetState(later).Message != "Gameover" {
		t.Errorf("Expected game over message, got %q", e.GetState(later).Message)
	}
}

func TestEngine_Restart(t *testing.T) {
	e := collisionEngine(t)

	if err := e.Restart(t0); !errors.Is(err, ErrNotGameOver) {
		t.Errorf("Expected ErrNotGameOver while playing, got %v", err)
	}

	now := t0.Add(e.GetConfig().EnemyCooldown())
	e.Tick(now)
	if !e.IsGameOver() {
		t.Fatal("setup: expected game over")
	}

	before := e.Version()
	if err := e.Restart(now); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if e.IsGameOver() {
		t.Error("Restart should clear game over")
	}
	if pos, _ := e.GetEnemyPosition(); pos != (Position{Row: 0, Col: 2}) {
		t.Errorf("Expected enemy back at spawn, got %+v", pos)
	}
	if e.GetState(now).Moves != 0 {
		t.Error("Restart should reset the move counter")
	}
	if e.Version() <= before {
		t.Error("Restart should bump the version")
	}
}

func TestEngine_Click(t *testing.T) {
	e := collisionEngine(t)

	// 3x1 tiles of 10px: popup centered on a 30x10 surface
	layout := GameOverLayout(30, 10)
	cx := layout.Button.X + layout.Button.W/2
	cy := layout.Button.Y + layout.Button.H/2

	if e.Click(cx, cy, t0) {
		t.Error("Click must do nothing while playing")
	}

	now := t0.Add(e.GetConfig().EnemyCooldown())
	e.Tick(now)

	tests := []struct {
		name     string
		x, y     int
		restarts bool
	}{
		{"outside", layout.Button.X - 5, cy, false},
		{"on edge", layout.Button.X, cy, false},
		{"inside", cx, cy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Click(tt.x, tt.y, now); got != tt.restarts {
				t.Errorf("Click(%d,%d) = %v, expected %v", tt.x, tt.y, got, tt.restarts)
			}
		})
	}
	if e.IsGameOver() {
		t.Error("Expected restart after clicking the button")
	}
}

func TestEngine_LevelLoadClearsEnemyTrail(t *testing.T) {
	grid := [][]int{
		{2, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 4, 0, 3},
	}
	e, err := NewEngine(createTestConfig(grid, grid), t0, WithRand(noShuffle{}))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	now := t0.Add(e.GetConfig().EnemyCooldown())
	if !e.Tick(now) {
		t.Fatal("Expected enemy to move")
	}
	if e.enemy.Trail().Len() != 1 {
		t.Fatalf("Expected one enemy trail entry, got %d", e.enemy.Trail().Len())
	}

	e.loadLevel(1)
	if e.enemy.Trail().Len() != 0 {
		t.Error("Enemy trail should be cleared on level load")
	}
	if pos, ok := e.GetEnemyPosition(); !ok || pos != (Position{Row: 2, Col: 2}) {
		t.Errorf("Expected the level 2 enemy at its spawn, got %+v (active=%v)", pos, ok)
	}
}

func TestEngine_EnemyKeepsPlaceAcrossWrap(t *testing.T) {
	grid := [][]int{
		{2, 0, 0, 0, 3},
		{1, 1, 1, 1, 1},
		{0, 0, 4, 0, 0},
	}
	e, err := NewEngine(createTestConfig(grid), t0, WithRand(noShuffle{}))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	now := t0.Add(e.GetConfig().EnemyCooldown())
	if !e.Tick(now) {
		t.Fatal("Expected enemy to move")
	}
	moved, _ := e.GetEnemyPosition()
	if moved != (Position{Row: 0, Col: 2}) {
		t.Fatalf("Expected enemy to jump to (0,2), got %+v", moved)
	}

	step := e.GetConfig().PlayerCooldown()
	for i := 0; i < 4; i++ {
		now = now.Add(step)
		if !e.Move(Right, now) {
			t.Fatalf("Move %d rejected", i+1)
		}
	}
	if e.levelsCleared != 1 || e.GetLevelIndex() != 0 {
		t.Fatalf("Expected a wrap to level 1, cleared=%d index=%d", e.levelsCleared, e.GetLevelIndex())
	}
	if pos, _ := e.GetEnemyPosition(); pos != moved {
		t.Errorf("Expected enemy to stay at %+v after the wrap, got %+v", moved, pos)
	}
	if e.enemy.Trail().Len() != 0 {
		t.Error("Enemy trail should be cleared on level load")
	}

	now = now.Add(time.Second)
	e.over = true
	if err := e.Restart(now); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if pos, _ := e.GetEnemyPosition(); pos != (Position{Row: 2, Col: 2}) {
		t.Errorf("Expected restart to return the enemy to its spawn, got %+v", pos)
	}
}

func TestEngine_DrawOrder(t *testing.T) {
	e := collisionEngine(t)
	now := t0.Add(e.GetConfig().EnemyCooldown())
	e.Tick(now)

	r := &recordingRenderer{}
	before := e.Version()
	e.Draw(r, now)
	if e.Version() != before {
		t.Error("Draw must not change engine state")
	}

	expected := []string{
		"tile 0,0 floor",
		"tile 10,0 floor",
		"tile 20,0 floor",
		"trail enemy 20,0",
		"actor enemy 0,0",
		"actor player 0,0",
		"overlay Gameover Redo",
		"hud Level 1/1 - WASD/Arrows to move - Avoid the Enemy",
	}
	if strings.Join(r.calls, "\n") != strings.Join(expected, "\n") {
		t.Errorf("Unexpected draw calls:\n%s\nexpected:\n%s", strings.Join(r.calls, "\n"), strings.Join(expected, "\n"))
	}
}

func TestEngine_GetState(t *testing.T) {
	e, err := NewEngine(createTestConfig(scenarioGrid), t0)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	state := e.GetState(t0)
	if state.Rows != 3 || state.Cols != 3 || state.PixelWidth != 30 || state.PixelHeight != 30 {
		t.Errorf("Unexpected dimensions: %+v", state)
	}
	if state.Grid[0][0] != Floor {
		t.Errorf("Start cell should read as floor, got %s", state.Grid[0][0])
	}
	if state.Grid[2][2] != Goal {
		t.Errorf("Expected goal at (2,2), got %s", state.Grid[2][2])
	}
	if state.Enemy != nil {
		t.Error("Expected no enemy in snapshot")
	}
	if state.Message != "Level 1/1 - WASD/Arrows to move - Avoid the Enemy" {
		t.Errorf("Unexpected HUD message %q", state.Message)
	}

	// snapshots are copies
	state.Grid[2][2] = Wall
	if !e.GetLevel().IsGoal(Position{Row: 2, Col: 2}) {
		t.Error("Mutating a snapshot must not affect the level")
	}
}

func TestEngine_TrailPrunedOnTick(t *testing.T) {
	e, err := NewEngine(createTestConfig(scenarioGrid), t0)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	now := t0.Add(time.Second)
	e.Move(Right, now)
	if e.player.Trail().Len() != 1 {
		t.Fatalf("Expected one trail entry, got %d", e.player.Trail().Len())
	}

	if e.Tick(now.Add(e.GetConfig().TrailFade() - time.Millisecond)) {
		t.Error("Nothing should change before the trail fades")
	}
	if !e.Tick(now.Add(e.GetConfig().TrailFade())) {
		t.Error("Expected change when the trail entry expires")
	}
	if e.player.Trail().Len() != 0 {
		t.Error("Expected trail to be pruned")
	}
}
