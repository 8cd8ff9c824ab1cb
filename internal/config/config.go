package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/vvka-141/dwca/pkg/dwca"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables that override the database connection, in order of
// precedence.
const (
	EnvConnection  = "DWCA_CONNECTION"
	EnvDatabaseURL = "DATABASE_URL"
)

type ArchiveConfig struct {
	Lazy     bool   `yaml:"lazy"`
	Metadata string `yaml:"metadata,omitempty"`
	Encoding string `yaml:"encoding,omitempty"`
	TempDir  string `yaml:"temp_dir,omitempty"`
}

type ColumnsConfig struct {
	ID       string `yaml:"id,omitempty"`
	Parent   string `yaml:"parent,omitempty"`
	Accepted string `yaml:"accepted,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Rank     string `yaml:"rank,omitempty"`
}

type TaxonomyConfig struct {
	FuzzyDistance int           `yaml:"fuzzy_distance"`
	Columns       ColumnsConfig `yaml:"columns"`
}

type DatabaseConfig struct {
	Connection string `yaml:"connection,omitempty"`
	Schema     string `yaml:"schema,omitempty"`
	BatchSize  int    `yaml:"batch_size,omitempty"`
}

type ProjectConfig struct {
	Archive  ArchiveConfig  `yaml:"archive"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Database DatabaseConfig `yaml:"database"`
}

const ConfigFileName = "dwca.yaml"

// Default returns the configuration used when no dwca.yaml exists.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Archive: ArchiveConfig{
			Metadata: dwca.DefaultMetadataFile,
			Encoding: dwca.DefaultEncoding,
		},
	}
}

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, dwca.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Resolve loads .env and dwca.yaml from sourcePath, falling back to defaults
// when the file is absent, and applies environment overrides.
func Resolve(sourcePath string) (*ProjectConfig, error) {
	_ = godotenv.Load(filepath.Join(sourcePath, ".env"))

	cfg, err := Load(sourcePath)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *ProjectConfig) applyEnv() {
	for _, name := range []string{EnvConnection, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			c.Database.Connection = v
			return
		}
	}
}

// Validate rejects values no command could use.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if c.Taxonomy.FuzzyDistance < 0 {
		errs = append(errs, fmt.Errorf("taxonomy.fuzzy_distance cannot be negative (got %d)", c.Taxonomy.FuzzyDistance))
	}
	if c.Database.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("database.batch_size cannot be negative (got %d)", c.Database.BatchSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", dwca.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
