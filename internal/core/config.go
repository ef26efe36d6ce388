package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the entire redseed configuration.
type Config struct {
	Defense     DefenseConfig     `yaml:"defense"`
	Attack      AttackConfig      `yaml:"attack"`
	Evolution   EvolutionConfig   `yaml:"evolution"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Bus         BusConfig         `yaml:"bus"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DefenseConfig holds defense-side tuning.
type DefenseConfig struct {
	StrengthenAmount   int     `yaml:"strengthen_amount"`
	BreakthroughAmount int     `yaml:"breakthrough_amount"`
	EmergencyThreshold float64 `yaml:"emergency_threshold"` // block % below which everything activates
}

// AttackConfig holds attack-side tuning.
type AttackConfig struct {
	PopulationSize  int     `yaml:"population_size"`
	RaiseThreshold  float64 `yaml:"raise_threshold"`  // success rate above which difficulty rises
	MutateThreshold float64 `yaml:"mutate_threshold"` // success rate below which patterns mutate
	MinAttempts     int     `yaml:"min_attempts"`     // attempts required before mutation kicks in
}

// EvolutionConfig holds cycle-level tuning. The stagnation and perfect-run
// thresholds are tuned values, not invariants, so they live here.
type EvolutionConfig struct {
	MaxGenerations  int     `yaml:"max_generations"`
	StagnationSpan  int     `yaml:"stagnation_span"`  // trailing generations inspected for stagnation
	StagnationRange float64 `yaml:"stagnation_range"` // fitness range below which evolution stagnates
	PerfectFitness  float64 `yaml:"perfect_fitness"`
}

// PersistenceConfig holds state snapshot settings.
type PersistenceConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DataDir      string `yaml:"data_dir"`
	SaveInterval int    `yaml:"save_interval"` // generations between saves
}

// BusConfig holds NATS event bus settings.
type BusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Embedded bool   `yaml:"embedded"`
	DataDir  string `yaml:"data_dir"`
	Port     int    `yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sane defaults — zero-config works out of the box.
func DefaultConfig() *Config {
	return &Config{
		Defense: DefenseConfig{
			StrengthenAmount:   2,
			BreakthroughAmount: 3,
			EmergencyThreshold: 50.0,
		},
		Attack: AttackConfig{
			PopulationSize:  9,
			RaiseThreshold:  0.6,
			MutateThreshold: 0.2,
			MinAttempts:     2,
		},
		Evolution: EvolutionConfig{
			MaxGenerations:  10,
			StagnationSpan:  3,
			StagnationRange: 5.0,
			PerfectFitness:  100.0,
		},
		Persistence: PersistenceConfig{
			Enabled:      true,
			DataDir:      "./data",
			SaveInterval: 5,
		},
		Bus: BusConfig{
			Enabled:  false,
			URL:      "nats://127.0.0.1:4222",
			Embedded: true,
			DataDir:  "./data/nats",
			Port:     4222,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks configuration values, returning warnings for fixable
// oddities and errors for values that cannot work.
func (c *Config) Validate() ([]string, []string) {
	var warnings, errs []string

	if c.Attack.PopulationSize < 1 {
		errs = append(errs, "attack.population_size must be at least 1")
	}
	if c.Evolution.MaxGenerations < 1 {
		errs = append(errs, "evolution.max_generations must be at least 1")
	}
	if c.Evolution.StagnationSpan < 2 {
		warnings = append(warnings, "evolution.stagnation_span below 2 disables stagnation detection")
	}
	if c.Defense.StrengthenAmount < 1 {
		warnings = append(warnings, "defense.strengthen_amount below 1 means failed defenses never improve")
	}
	if c.Persistence.Enabled && c.Persistence.SaveInterval < 1 {
		errs = append(errs, "persistence.save_interval must be at least 1 when persistence is enabled")
	}

	return warnings, errs
}

// LogLevel returns the normalized log level string.
func (c *Config) LogLevel() string {
	return strings.ToLower(c.Logging.Level)
}
