package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

// gameServiceImpl implements the GameService interface. A single lock
// serializes every engine call, so engines never see concurrent access.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	now      func() time.Time
	mu       sync.RWMutex
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithClock replaces time.Now as the source of frame and input timestamps
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) {
		s.now = now
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newEvent(eventType, message string, at time.Time, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: at,
		Position:  pos,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, now time.Time) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(now),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	now := s.now()
	session, err := s.sessions.Create("", config, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.ConfigID = configName
	if session.ConfigID == "" {
		session.ConfigID = s.getConfigID(config.Name)
	}

	return s.sessionInfo(session, now), nil
}

// GetSession retrieves session information. It takes the write lock since
// the access time is updated.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	s.sessions.UpdateLastAccessed(sessionID, now)

	return s.sessionInfo(session, now), nil
}

// ListSessions returns all active sessions ordered by ID
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, now))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move applies one player step. Rejected moves are not errors; the result
// explains what was in the way.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	s.sessions.UpdateLastAccessed(sessionID, now)

	eng := sess.Engine
	prevPos := eng.GetPlayerPosition()
	prevLevel := eng.GetLevelIndex()
	prevCleared := eng.GetState(now).LevelsCleared

	target := prevPos.Add(dir.Offset())
	moved := eng.Move(dir, now)
	state := eng.GetState(now)

	result := &MoveResult{
		Success:   moved,
		GameState: state,
		Message:   state.Message,
		Events:    []GameEvent{},
	}

	if moved {
		result.Events = append(result.Events, newEvent(EventMove,
			fmt.Sprintf("Moved %s to (%d,%d)", dir, target.Row, target.Col), now, target))
		if state.LevelsCleared > prevCleared {
			msg := fmt.Sprintf("Level %d complete, now on level %d/%d", prevLevel+1, state.LevelIndex+1, state.LevelCount)
			result.Events = append(result.Events, newEvent(EventLevelComplete, msg, now, state.Player.Position))
			result.Message = msg
		}
		return result, nil
	}

	if eng.IsGameOver() {
		result.Message = fmt.Sprintf("%s - restart to play again", sess.Config.GameOverText())
		return result, nil
	}

	level := eng.GetLevel()
	attempt := &AttemptInfo{Row: target.Row, Col: target.Col, Kind: "boundary"}
	if level.InBounds(target) {
		attempt.Kind = level.KindAt(target).String()
		attempt.Walkable = !level.IsWall(target)
	}
	attempt.Throttled = attempt.Walkable
	result.AttemptedTo = attempt

	if attempt.Throttled {
		result.Message = fmt.Sprintf("Too fast: moves are limited to one per %v", sess.Config.PlayerCooldown())
		result.Events = append(result.Events, newEvent(EventThrottled, result.Message, now, prevPos))
	} else {
		result.Message = fmt.Sprintf("Blocked by %s at (%d,%d)", attempt.Kind, target.Row, target.Col)
		result.Events = append(result.Events, newEvent(EventBlocked, result.Message, now, prevPos))
	}
	return result, nil
}

// Restart reinitializes a finished session. The update carries a restart
// event for subscribers.
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*StateUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	s.sessions.UpdateLastAccessed(sessionID, now)

	if err := sess.Engine.Restart(now); err != nil {
		return nil, fmt.Errorf("failed to restart session %s: %w", sessionID, err)
	}
	log.Printf("Session %s restarted", sess.ID)

	state := sess.Engine.GetState(now)
	return &StateUpdate{
		SessionID: sess.ID,
		GameState: state,
		Events: []GameEvent{
			newEvent(EventRestart, "Game restarted", now, state.Player.Position),
		},
	}, nil
}

// Tick advances every session by one frame and returns the sessions whose
// state changed.
func (s *gameServiceImpl) Tick(ctx context.Context) ([]StateUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var updates []StateUpdate
	for _, sess := range s.sessions.List() {
		wasOver := sess.Engine.IsGameOver()
		if !sess.Engine.Tick(now) {
			continue
		}

		state := sess.Engine.GetState(now)
		update := StateUpdate{SessionID: sess.ID, GameState: state}
		if !wasOver && state.GameOver {
			update.Events = append(update.Events,
				newEvent(EventGameOver, sess.Config.GameOverText(), now, state.Player.Position))
			log.Printf("Session %s: caught by the enemy on level %d/%d", sess.ID, state.LevelIndex+1, state.LevelCount)
		}
		updates = append(updates, update)
	}

	sort.Slice(updates, func(i, j int) bool { return updates[i].SessionID < updates[j].SessionID })
	return updates, nil
}

// GetGameState returns the current snapshot of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	s.sessions.UpdateLastAccessed(sessionID, now)

	return sess.Engine.GetState(now), nil
}

// DescribeCell reports what occupies a cell of the active level
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, row, col int) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	p := engine.Position{Row: row, Col: col}
	level := sess.Engine.GetLevel()
	info := &CellInfo{Position: p, Kind: "boundary"}
	if level.InBounds(p) {
		info.InBounds = true
		info.Kind = level.KindAt(p).String()
		info.Walkable = !level.IsWall(p)
		info.EnemySpawn = level.IsEnemySpawnCell(p)
	}
	info.Player = sess.Engine.GetPlayerPosition() == p
	if enemy, ok := sess.Engine.GetEnemyPosition(); ok {
		info.Enemy = enemy == p
	}
	return info, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}
