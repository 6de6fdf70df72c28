package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:         "Test Config",
		Description:  "Test configuration",
		GridSize:     8,
		Words:        []string{"SOL", "LUNA", "MARTE"},
		RoundSeconds: 120,
		Messages: engine.Messages{
			Welcome:   "Welcome!",
			WordFound: "You found %s",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.PuzzleConfig) {
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

const yamlConfig = `name: Planets
description: Planet names
grid_size: 8
words:
  - tierra
  - venus
round_seconds: 90
messages:
  welcome: Find the planets
`

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)
		writeConfigFile(t, dir, "space", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory serves the built-in puzzle", func(t *testing.T) {
		manager, err := NewManager("/non/existent/path")
		if err != nil {
			t.Fatalf("Expected missing directory to be tolerated, got %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.Name != "animals" {
			t.Fatalf("Expected built-in animals default, got %+v", def)
		}
		configs, err := manager.ListConfigs()
		if err != nil || len(configs) != 1 || configs[0].ConfigID != DefaultConfigName {
			t.Errorf("Expected only the built-in config, got %v (%v)", configs, err)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)
		file := filepath.Join(dir, "file")
		os.WriteFile(file, []byte("x"), 0644)

		if _, err := NewManager(file); err == nil {
			t.Error("Expected error when the config path is a file")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	space := createValidConfig()
	space.Name = "Space"
	writeConfigFile(t, dir, "space", space)
	os.WriteFile(filepath.Join(dir, "planets.yaml"), []byte(yamlConfig), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("space")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Space" || config.GridSize != 8 {
			t.Errorf("Unexpected config %+v", config)
		}
		if config.Messages.TimeUp == "" {
			t.Error("Expected unset messages to be defaulted")
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("space.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Space" {
			t.Errorf("Expected config name 'Space', got '%s'", config.Name)
		}
	})

	t.Run("load yaml", func(t *testing.T) {
		config, err := manager.LoadConfig("planets")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.Words[0] != "TIERRA" || config.RoundSeconds != 90 {
			t.Errorf("Expected normalized yaml config, got %v %d", config.Words, config.RoundSeconds)
		}
		if config.Messages.Welcome != "Find the planets" {
			t.Errorf("Expected yaml welcome message, got %q", config.Messages.Welcome)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("space")
		config2, err := manager.LoadConfig("space")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("built-in animals", func(t *testing.T) {
		config, err := manager.LoadConfig("animals")
		if err != nil {
			t.Fatalf("Expected built-in animals, got %v", err)
		}
		if len(config.Words) != 5 {
			t.Errorf("Expected 5 animal words, got %v", config.Words)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644)

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644)

		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("path traversal stays in the directory", func(t *testing.T) {
		if _, err := manager.LoadConfig("../space"); err == nil {
			t.Error("Expected traversal name to be rejected")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	animals := createValidConfig()
	animals.Name = "Custom Animals"
	writeConfigFile(t, dir, "animals", animals)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := manager.GetDefault()
	if config == nil || config.Name != "Custom Animals" {
		t.Fatalf("Expected animals file to override the built-in default, got %+v", config)
	}

	writeConfigFile(t, dir, "space", createValidConfig())
	if err := manager.SetDefault("space"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Test Config" {
		t.Errorf("Expected new default, got %s", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); err == nil {
		t.Error("Expected error for unknown default")
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for _, name := range []string{"easy", "medium", "hard"} {
		config := createValidConfig()
		config.Name = strings.ToUpper(name[:1]) + name[1:]
		writeConfigFile(t, dir, name, config)
	}
	os.WriteFile(filepath.Join(dir, "planets.yml"), []byte(yamlConfig), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	var ids []string
	for _, info := range configList {
		ids = append(ids, info.ConfigID)
	}
	want := []string{"animals", "easy", "hard", "medium", "planets"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("Expected configs %v, got %v", want, ids)
	}
	for _, info := range configList {
		if info.ConfigID == "easy" && (info.WordCount != 3 || info.RoundSeconds != 120) {
			t.Errorf("Unexpected info for easy: %+v", info)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		if err := manager.SaveConfig("saved", createValidConfig()); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}
		manager.RefreshCache()
		loaded, err := manager.LoadConfig("saved")
		if err != nil || loaded.Name != "Test Config" {
			t.Errorf("Expected saved config to load back, got %+v (%v)", loaded, err)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		if err := manager.SaveConfig("saved-yaml.yaml", createValidConfig()); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "saved-yaml.yaml"))
		if err != nil {
			t.Fatalf("Expected yaml file: %v", err)
		}
		if !strings.Contains(string(data), "grid_size: 8") {
			t.Errorf("Expected yaml output, got:\n%s", data)
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		bad := createValidConfig()
		bad.Words = []string{"TOOLONGFORTHEGRID"}
		if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("bad name is rejected", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestValidateFile(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "good", createValidConfig())
	os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"name":"x","grid_size":2,"words":["ABC"]}`), 0644)

	files, err := ConfigFiles(dir)
	if err != nil || len(files) != 2 {
		t.Fatalf("Expected 2 config files, got %v (%v)", files, err)
	}
	if _, err := ValidateFile(filepath.Join(dir, "good.json")); err != nil {
		t.Errorf("Expected good.json to validate, got %v", err)
	}
	if _, err := ValidateFile(filepath.Join(dir, "bad.json")); err == nil {
		t.Error("Expected bad.json to fail validation")
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)
	writeConfigFile(t, dir, "space", createValidConfig())

	manager, _ := NewManager(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("space"); err != nil {
				t.Errorf("LoadConfig failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
