package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		TileSize:    32,
		Levels: [][][]int{
			{
				{1, 1, 1, 1},
				{1, 2, 0, 1},
				{1, 4, 3, 1},
				{1, 1, 1, 1},
			},
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("classic is preferred", func(t *testing.T) {
		dir := t.TempDir()
		other := createValidConfig()
		other.Name = "Another"
		writeConfigFile(t, dir, "another", other)
		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("first valid file without classic", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "aaa.json"), []byte(`{"levels": []}`), 0644)
		writeConfigFile(t, dir, "bbb", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Test Config" {
			t.Errorf("Expected first valid config as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}
		if manager.GetDefault() == nil || manager.GetDefault().Name != engine.DefaultGameConfig().Name {
			t.Error("Expected the built-in level set as default")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	easy := createValidConfig()
	easy.Name = "Easy"
	easy.EnemyMoveDelayMS = 1500
	writeConfigFile(t, dir, "easy", easy)
	os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"load existing config", "easy", nil},
		{"load with .json extension", "easy.json", nil},
		{"load non-existent config", "non-existent", ErrConfigNotFound},
		{"path traversal", "../easy", ErrConfigNotFound},
		{"load invalid config", "invalid", ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr == nil && (config.Name != "Easy" || config.EnemyCooldown().Milliseconds() != 1500) {
				t.Errorf("Unexpected config: %+v", config)
			}
		})
	}

	config1, _ := manager.LoadConfig("easy")
	config2, _ := manager.LoadConfig("easy.json")
	if config1 != config2 {
		t.Error("Expected config to be loaded from cache")
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	two := createValidConfig()
	two.Name = "Two Levels"
	two.Levels = append(two.Levels, two.Levels[0])
	writeConfigFile(t, dir, "two", two)
	writeConfigFile(t, dir, "one", createValidConfig())
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`not a config`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "one" || configs[1].ConfigID != "two" {
		t.Errorf("Expected configs sorted by id, got %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[1].Levels != 2 || configs[1].TileSize != 32 || configs[1].Filename != "two.json" {
		t.Errorf("Unexpected config info: %+v", configs[1])
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	alt := createValidConfig()
	alt.Name = "Alt"
	writeConfigFile(t, dir, "alt", alt)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", manager.Dir(), dir)
	}
	if err := manager.SetDefault("alt"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Alt" {
		t.Errorf("Expected Alt as default, got %q", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	// edit the file on disk; the cache hides it until refresh
	updated := createValidConfig()
	updated.Name = "Classic v2"
	writeConfigFile(t, dir, "classic", updated)

	if cfg, _ := manager.LoadConfig("classic"); cfg.Name != "Test Config" {
		t.Errorf("Expected cached config, got %q", cfg.Name)
	}
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().Name != "Classic v2" {
		t.Errorf("Expected reloaded classic as default, got %q", manager.GetDefault().Name)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("classic"); err != nil {
				t.Errorf("LoadConfig failed: %v", err)
			}
			manager.ListConfigs()
			manager.GetDefault()
		}()
	}
	wg.Wait()
}

func TestRepositoryConfigs(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) == 0 {
		t.Fatal("Expected shipped level sets in configs/")
	}
	if manager.GetDefault().Name == engine.DefaultGameConfig().Name {
		t.Error("Expected classic.json to be the default")
	}
}
