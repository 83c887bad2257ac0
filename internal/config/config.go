package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/assortlab/skualloc/pkg/core/alloc"
	"github.com/assortlab/skualloc/pkg/core/model"
)

// Tier defines one store tier: the fraction of stores (by rank) it holds
// and the per-SKU unit cap for its stores.
type Tier struct {
	Name        string  `yaml:"name" validate:"required"`
	Ratio       float64 `yaml:"ratio" validate:"gt=0,lte=1"`
	MaxSKULimit int     `yaml:"maxSkuLimit" validate:"min=0"`
}

// Scenario is one named experiment configuration.
type Scenario struct {
	Description string `yaml:"description,omitempty"`

	// PriorityTemperature blends deterministic revenue rank (0) with
	// uniform randomness (1) in the store priority scores.
	PriorityTemperature float64 `yaml:"priorityTemperature" validate:"min=0,max=1"`

	CoverageWeight   float64 `yaml:"coverageWeight" validate:"min=0"`
	VolumeWeight     float64 `yaml:"volumeWeight" validate:"min=0"`
	BalancePenalty   float64 `yaml:"balancePenalty" validate:"min=0"`
	EfficiencyWeight float64 `yaml:"efficiencyWeight" validate:"min=0"`
	ScarcityBonus    float64 `yaml:"scarcityBonus" validate:"min=0"`

	SolverTimeLimitSeconds int   `yaml:"solverTimeLimitSeconds" validate:"min=1"`
	Seed                   int64 `yaml:"seed"`
}

// Config is the application configuration.
type Config struct {
	Tiers     []Tier              `yaml:"tiers" validate:"required,min=1,dive"`
	Scenarios map[string]Scenario `yaml:"scenarios" validate:"required,min=1,dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from skualloc.yaml, looked up
// in the current directory first, then in the user's home directory.
func Load() (*Config, error) {
	path, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs struct validation plus the cross-field rules the tags can't
// express: tier ratios must sum to 1.0.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return model.NewConfigError("config validation failed: %v", err)
	}

	sum := 0.0
	for _, t := range cfg.Tiers {
		sum += t.Ratio
	}
	if sum < 1.0-1e-6 || sum > 1.0+1e-6 {
		return model.NewConfigError("tier ratios sum to %.4f, want 1.0", sum)
	}
	return nil
}

// TierSpecs converts the configured tiers into model specs, in config
// order (tier 1 first).
func (c *Config) TierSpecs() []model.TierSpec {
	specs := make([]model.TierSpec, len(c.Tiers))
	for i, t := range c.Tiers {
		specs[i] = model.TierSpec{Name: t.Name, Ratio: t.Ratio, MaxSKULimit: t.MaxSKULimit}
	}
	return specs
}

// Scenario looks up a scenario by name.
func (c *Config) Scenario(name string) (Scenario, error) {
	s, ok := c.Scenarios[name]
	if !ok {
		return Scenario{}, model.NewConfigError("unknown scenario %q (available: %v)", name, c.ScenarioNames())
	}
	return s, nil
}

// ScenarioNames returns the configured scenario names, sorted.
func (c *Config) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for name := range c.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Weights maps a scenario onto the engine's objective weights.
func (s Scenario) Weights() alloc.Weights {
	return alloc.Weights{
		Coverage:       s.CoverageWeight,
		Volume:         s.VolumeWeight,
		BalancePenalty: s.BalancePenalty,
		Efficiency:     s.EfficiencyWeight,
		ScarcityBonus:  s.ScarcityBonus,
	}
}

func findConfigFile() (string, error) {
	const configFileName = "skualloc.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	homePath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
