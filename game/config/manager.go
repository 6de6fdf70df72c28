package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the puzzle served when no name is given.
const DefaultConfigName = "animals"

// extensions are tried in this order when a name has none.
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles puzzle configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleConfig
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager for configDir. A missing
// directory is not an error: the manager then serves the built-in puzzle.
func NewManager(configDir string) (*Manager, error) {
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name, with or without extension.
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	key := configID(name)
	if !validName(key) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) && key == DefaultConfigName {
			config := engine.DefaultPuzzleConfig()
			m.configs[key] = config
			return config, nil
		}
		return nil, err
	}

	config, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	m.configs[key] = config
	return config, nil
}

// ListConfigs returns information about every valid configuration file.
// The built-in puzzle is listed when no file overrides it.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasConfigExt(entry.Name()) {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true
		configs = append(configs, configInfo(entry.Name(), id, config))
	}

	if !seen[DefaultConfigName] {
		configs = append(configs, configInfo("", DefaultConfigName, engine.DefaultPuzzleConfig()))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations so they are re-read from disk.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// SaveConfig validates config and writes it to disk. The extension of name
// picks the format; JSON is used when there is none.
func (m *Manager) SaveConfig(name string, config *engine.PuzzleConfig) error {
	key := configID(name)
	if !validName(key) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	config.Normalize()
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !hasConfigExt(filename) {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[key] = config
	m.mu.Unlock()

	return nil
}

// loadDefaultConfig uses animals from disk when present and valid, and the
// built-in puzzle otherwise.
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		config = engine.DefaultPuzzleConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// resolve finds the file for name in the config directory.
func (m *Manager) resolve(name string) (string, error) {
	candidates := []string{name}
	if !hasConfigExt(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		path := filepath.Join(m.configDir, filepath.Base(c))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return "", ErrConfigNotFound
}

// readConfig parses, normalizes and validates one config file.
func readConfig(path string) (*engine.PuzzleConfig, error) {
	config, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// parseFile decodes a JSON or YAML config by extension and normalizes it.
func parseFile(path string) (*engine.PuzzleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.PuzzleConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Normalize()
	return &config, nil
}

// ValidateFile reads a single config file without caching it. Validation
// problems are returned together; multierr.Errors splits them.
func ValidateFile(path string) (*engine.PuzzleConfig, error) {
	config, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return config, engine.ValidatePuzzleConfig(config)
}

// ConfigFiles lists the config files in dir, sorted by name.
func ConfigFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && hasConfigExt(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func configInfo(filename, id string, config *engine.PuzzleConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:     filename,
		ConfigID:     id,
		Name:         config.Name,
		Description:  config.Description,
		GridSize:     config.GridSize,
		WordCount:    len(config.Words),
		RoundSeconds: config.RoundSeconds,
	}
}

// validName rejects empty names and anything that could leave the directory.
func validName(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func hasConfigExt(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID strips a known extension from name.
func configID(name string) string {
	if hasConfigExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
