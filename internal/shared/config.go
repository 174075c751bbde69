package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/tslabel/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	MinWindowSize = 100
	MaxWindowSize = 10000
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Grouping   GroupingConfig   `toml:"grouping"`
	View       ViewConfig       `toml:"view"`
	Annotation AnnotationConfig `toml:"annotation"`
	Save       SaveConfig       `toml:"save"`
	Database   DatabaseConfig   `toml:"database"`
	Log        LogConfig        `toml:"log"`
}

// DataConfig lists where arrays are discovered.
type DataConfig struct {
	Directories []string `toml:"directories"`
	Extensions  []string `toml:"extensions"`
}

// GroupingConfig controls how sibling files are matched into groups.
type GroupingConfig struct {
	Mode   string `toml:"mode"`
	Length int    `toml:"length"`
}

// ViewConfig contains initial viewport settings.
type ViewConfig struct {
	WindowSize int    `toml:"window_size"`
	YMode      string `toml:"y_mode"`
}

// AnnotationConfig contains interval creation and selection settings.
type AnnotationConfig struct {
	MinWidth int `toml:"min_width"`
	DwellMS  int `toml:"dwell_ms"`
}

// Dwell returns the selection dwell as a [time.Duration].
func (c AnnotationConfig) Dwell() time.Duration {
	return time.Duration(c.DwellMS) * time.Millisecond
}

// SaveConfig contains labeled output settings.
type SaveConfig struct {
	Mode       string `toml:"mode"`
	SkipPoints int    `toml:"skip_points"`
	OutputDir  string `toml:"output_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if _, err := models.ParseMatchMode(c.Grouping.Mode); err != nil {
		return fmt.Errorf("%w: grouping.mode: %v", ErrInvalidConfig, err)
	}
	if c.Grouping.Length < 1 {
		return fmt.Errorf("%w: grouping.length must be positive, got %d", ErrInvalidConfig, c.Grouping.Length)
	}
	if c.View.WindowSize < MinWindowSize || c.View.WindowSize > MaxWindowSize {
		return fmt.Errorf("%w: view.window_size must be within [%d, %d], got %d",
			ErrInvalidConfig, MinWindowSize, MaxWindowSize, c.View.WindowSize)
	}
	if _, err := models.ParseYMode(c.View.YMode); err != nil {
		return fmt.Errorf("%w: view.y_mode: %v", ErrInvalidConfig, err)
	}
	if c.Annotation.MinWidth < 1 {
		return fmt.Errorf("%w: annotation.min_width must be positive, got %d", ErrInvalidConfig, c.Annotation.MinWidth)
	}
	if c.Annotation.DwellMS < 0 {
		return fmt.Errorf("%w: annotation.dwell_ms must not be negative, got %d", ErrInvalidConfig, c.Annotation.DwellMS)
	}
	if _, err := models.ParseSaveMode(c.Save.Mode); err != nil {
		return fmt.Errorf("%w: save.mode: %v", ErrInvalidConfig, err)
	}
	if c.Save.SkipPoints < 0 {
		return fmt.Errorf("%w: save.skip_points must not be negative, got %d", ErrInvalidConfig, c.Save.SkipPoints)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
