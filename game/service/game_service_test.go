package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/service"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/session"
)

// noShuffle keeps enemy candidates in declaration order
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, now time.Time) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config, now, engine.WithRand(noShuffle{}))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string, now time.Time) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = now
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) CleanupExpiredSessions(now time.Time, maxAge time.Duration) int {
	return 0
}

func (m *MockSessionManager) Count() int {
	return len(m.sessions)
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	// player at (0,0); the enemy at (0,2) can only jump onto (0,0)
	chase := &engine.GameConfig{
		Name:        "chase",
		Description: "Enemy reaches the start on its first move",
		TileSize:    10,
		Levels:      [][][]int{{{2, 0, 4}}},
	}
	// two corridors: walking right twice clears a level
	corridors := &engine.GameConfig{
		Name:        "corridors",
		Description: "Two short corridors",
		TileSize:    10,
		Levels: [][][]int{
			{{2, 0, 3}, {1, 1, 1}},
			{{2, 0, 3}, {1, 1, 1}},
		},
	}

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"chase":     chase,
			"corridors": corridors,
			"default":   corridors,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Levels:      len(config.Levels),
			TileSize:    config.Tile(),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestService() (service.GameService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), service.WithClock(clock.Now))
	return svc, clock
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tests := []struct {
		name       string
		configName string
		wantErr    error
	}{
		{"create with default config", "", nil},
		{"create with specific config", "chase", nil},
		{"create with invalid config", "nonexistent", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (session == nil || session.GameState == nil) {
				t.Error("CreateSession() returned an incomplete session")
			}
		})
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ConfigName != "corridors" && sessions[0].ConfigName != "default" {
		t.Errorf("Expected default session to report its config id, got %q", sessions[0].ConfigName)
	}
	if sessions[1].ConfigName != "chase" {
		t.Errorf("Expected config id 'chase', got %q", sessions[1].ConfigName)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService()

	info, err := svc.CreateSession(ctx, "corridors")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Move(ctx, "nope", "up"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Move(ctx, info.ID, "diagonal"); !errors.Is(err, engine.ErrUnknownDirection) {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}

	// throttled: no time has passed since the session started
	res, err := svc.Move(ctx, info.ID, "right")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if res.Success || res.AttemptedTo == nil || !res.AttemptedTo.Throttled {
		t.Errorf("Expected a throttled move, got %+v", res)
	}
	if len(res.Events) != 1 || res.Events[0].Type != service.EventThrottled || res.Events[0].ID == "" {
		t.Errorf("Expected a throttled event with an id, got %+v", res.Events)
	}

	clock.Advance(time.Second)
	res, err = svc.Move(ctx, info.ID, "down")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if res.Success || res.AttemptedTo == nil || res.AttemptedTo.Kind != "wall" || res.AttemptedTo.Walkable {
		t.Errorf("Expected a move blocked by a wall, got %+v", res.AttemptedTo)
	}

	res, err = svc.Move(ctx, info.ID, "up")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if res.AttemptedTo == nil || res.AttemptedTo.Kind != "boundary" {
		t.Errorf("Expected a boundary block, got %+v", res.AttemptedTo)
	}

	res, _ = svc.Move(ctx, info.ID, "right")
	if !res.Success || res.GameState.Player.Position != (engine.Position{Row: 0, Col: 1}) {
		t.Fatalf("Expected move to (0,1), got %+v", res)
	}

	clock.Advance(time.Second)
	res, _ = svc.Move(ctx, info.ID, "right")
	if !res.Success {
		t.Fatal("Expected move onto the goal")
	}
	if res.GameState.LevelIndex != 1 || res.GameState.LevelsCleared != 1 {
		t.Errorf("Expected level 2 after the goal, got index %d", res.GameState.LevelIndex)
	}
	if len(res.Events) != 2 || res.Events[1].Type != service.EventLevelComplete {
		t.Errorf("Expected move and level_complete events, got %+v", res.Events)
	}
}

func TestGameService_TickAndRestart(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService()

	info, err := svc.CreateSession(ctx, "chase")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := svc.Restart(ctx, info.ID); !errors.Is(err, engine.ErrNotGameOver) {
		t.Errorf("Expected ErrNotGameOver while playing, got %v", err)
	}

	updates, err := svc.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no updates before the enemy cooldown, got %d", len(updates))
	}

	clock.Advance(time.Second)
	updates, _ = svc.Tick(ctx)
	if len(updates) != 1 || updates[0].SessionID != info.ID {
		t.Fatalf("Expected one update for %s, got %+v", info.ID, updates)
	}
	if !updates[0].GameState.GameOver {
		t.Error("Expected game over after the enemy reached the player")
	}
	if len(updates[0].Events) != 1 || updates[0].Events[0].Type != service.EventGameOver {
		t.Errorf("Expected a game_over event, got %+v", updates[0].Events)
	}

	res, _ := svc.Move(ctx, info.ID, "right")
	if res.Success {
		t.Error("Moves must be ignored after game over")
	}

	restarted, err := svc.Restart(ctx, info.ID)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if restarted.SessionID != info.ID {
		t.Errorf("Expected update for %s, got %s", info.ID, restarted.SessionID)
	}
	if len(restarted.Events) != 1 || restarted.Events[0].Type != service.EventRestart {
		t.Errorf("Expected a restart event, got %+v", restarted.Events)
	}
	state := restarted.GameState
	if state.GameOver || state.Enemy == nil || state.Enemy.Position != (engine.Position{Row: 0, Col: 2}) {
		t.Errorf("Unexpected state after restart: %+v", state)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.Tick(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGameService_DescribeCell(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, _ := svc.CreateSession(ctx, "chase")

	tests := []struct {
		name     string
		row, col int
		check    func(*service.CellInfo) bool
	}{
		{"player cell", 0, 0, func(c *service.CellInfo) bool { return c.Player && c.Kind == "floor" && c.Walkable }},
		{"enemy spawn", 0, 2, func(c *service.CellInfo) bool { return c.Enemy && c.EnemySpawn }},
		{"outside", 3, 3, func(c *service.CellInfo) bool { return !c.InBounds && c.Kind == "boundary" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, err := svc.DescribeCell(ctx, info.ID, tt.row, tt.col)
			if err != nil {
				t.Fatalf("DescribeCell failed: %v", err)
			}
			if !tt.check(cell) {
				t.Errorf("Unexpected cell: %+v", cell)
			}
		})
	}
}

func TestGameService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.GetSession(ctx, info.ID); err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if _, err := svc.GetGameState(ctx, info.ID); err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 3 {
		t.Errorf("Expected 3 configs, got %d (%v)", len(configs), err)
	}
	if _, err := svc.LoadConfig(ctx, "missing"); !errors.Is(err, service.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestGameService_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(session.NewManager(), NewMockConfigManager())

	info, err := svc.CreateSession(ctx, "corridors")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					errs <- err
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := svc.GetGameState(ctx, info.ID); err != nil {
					errs <- err
					return
				}
				if _, err := svc.ListSessions(ctx); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}

func TestGameService_AccessTimeFollowsClock(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService()

	info, _ := svc.CreateSession(ctx, "corridors")
	created := info.LastAccessedAt

	clock.Advance(time.Minute)
	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if want := created.Add(time.Minute); !got.LastAccessedAt.Equal(want) {
		t.Errorf("LastAccessedAt = %v, want %v", got.LastAccessedAt, want)
	}
}
