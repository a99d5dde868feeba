// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Model families understood by the trainer.
const (
	FamilyLinear = "linear"
	FamilyForest = "forest"
)

// Config defines the structure for all application configuration.
type Config struct {
	LogLevel   string         `yaml:"log_level"`
	Pipeline   PipelineConfig `yaml:"pipeline"`
	Candidates []string       `yaml:"candidates"`
	Forest     ForestConfig   `yaml:"forest"`
	Plots      PlotConfig     `yaml:"plots"`
	RunStore   RunStoreConfig `yaml:"run_store"`
	ModelPath  string         `yaml:"-"` // Loaded from env (MODEL_PATH)
}

// PipelineConfig holds everything a single training run needs.
// It is passed by value into each stage.
type PipelineConfig struct {
	SourcePath     string            `yaml:"source_path"`
	Target         string            `yaml:"target"`
	Features       []string          `yaml:"features"`
	Family         string            `yaml:"family"`
	TestSize       float64           `yaml:"test_size"`
	Seed           int64             `yaml:"seed"`
	OutputPath     string            `yaml:"output_path"`
	ReportPath     string            `yaml:"report_path"`
	DateColumn     string            `yaml:"date_column"`
	ExcludeColumns []string          `yaml:"exclude_columns"`
	RenameMap      map[string]string `yaml:"rename_map"`
}

// ForestConfig holds configuration for the ensemble-of-trees regressor.
type ForestConfig struct {
	Trees           int `yaml:"trees"`
	MaxDepth        int `yaml:"max_depth"` // 0 means unlimited
	MinSamplesSplit int `yaml:"min_samples_split"`
}

// PlotConfig holds configuration for the diagnostic plots.
type PlotConfig struct {
	Save FlexBool `yaml:"save_plots"`
	Dir  string   `yaml:"dir"`
}

// RunStoreConfig selects the run history database. An empty driver disables it.
type RunStoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" or "pgx"
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a run store is configured.
func (c RunStoreConfig) Enabled() bool {
	return c.Driver != ""
}

// PlantInfluentRenameMap maps the raw spreadsheet headers of the high-flow
// plant dataset to canonical column names.
var PlantInfluentRenameMap = map[string]string{
	"Unnamed: 0": "Date",
	"Plant Influent\n[Plant Influent Total Flow]": "Plant_Influent",
	"Vista Gauge Level (feet)":                    "Vista_Level_ft",
	"Vista Gauge Elevation (feet)":                "Vista_Elev_ft",
	"Vista Gauge Predicted Max Level (feet)":      "Vista_PredMax_Level_ft",
	"Vista Gauge Predicted Max Elevation (feet)":  "Vista_PredMax_Elev_ft",
	"Flow1 (cfs)":                                 "Flow1_cfs",
	"Flow2 (cfs)":                                 "Flow2_cfs",
	"Flow3 (cfs)":                                 "Flow3_cfs",
	"PRCP (Inches)":                               "PRCP_in",
	"SNOW (Inches)":                               "SNOW_in",
	"SNWD (Inches)":                               "SNWD_in",
}

// NorthManholeRenameMap maps the raw headers of the north manhole dataset.
var NorthManholeRenameMap = map[string]string{
	"Date":                                       "Date",
	"North Influent Flow":                        "North_Influent",
	"Vista Gauge Level (feet)":                   "Vista_Level_ft",
	"Vista Gauge Elevation (feet)":               "Vista_Elev_ft",
	"Vista Gauge Predicted Max Level (feet)":     "Vista_PredMax_Level_ft",
	"Vista Gauge Predicted Max Elevation (feet)": "Vista_PredMax_Elev_ft",
	"North Manhole Level (feet)":                 "North_Manhole_Level_ft",
	"Flow1 (cfs)":                                "Flow1_cfs",
	"Flow2 (cfs)":                                "Flow2_cfs",
	"Flow3 (cfs)":                                "Flow3_cfs",
	"PRCP (Inches)":                              "PRCP_in",
	"SNOW (Inches)":                              "SNOW_in",
	"SNWD (Inches)":                              "SNWD_in",
}

// DefaultCandidates is the ordered list of predictors tried in comparison mode.
var DefaultCandidates = []string{
	"Flow1_cfs",
	"Flow2_cfs",
	"Flow3_cfs",
	"Vista_Level_ft",
	"Vista_PredMax_Level_ft",
	"PRCP_in",
	"SNOW_in",
	"SNWD_in",
}

// Default returns the configuration used when no file overrides it:
// single-feature linear regression of plant influent on the Vista gauge level.
func Default() *Config {
	rename := make(map[string]string, len(PlantInfluentRenameMap))
	for k, v := range PlantInfluentRenameMap {
		rename[k] = v
	}
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			SourcePath: "OrganizedHighFlowData.csv",
			Target:     "Plant_Influent",
			Features:   []string{"Vista_Level_ft"},
			Family:     FamilyLinear,
			TestSize:   0.2,
			Seed:       42,
			OutputPath: "plant_influent_model.bin",
			ReportPath: "single_feature_model_results.csv",
			DateColumn: "Date",
			RenameMap:  rename,
		},
		Candidates: append([]string(nil), DefaultCandidates...),
		Forest: ForestConfig{
			Trees:           100,
			MaxDepth:        0,
			MinSamplesSplit: 2,
		},
		Plots: PlotConfig{
			Save: true,
			Dir:  ".",
		},
	}
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables. An empty path yields the defaults plus env.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	// Load overrides from environment variables
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if modelPath := os.Getenv("MODEL_PATH"); modelPath != "" {
		cfg.ModelPath = modelPath
	}
	if sourcePath := os.Getenv("SOURCE_PATH"); sourcePath != "" {
		cfg.Pipeline.SourcePath = sourcePath
	}
	if driver := os.Getenv("RUN_STORE_DRIVER"); driver != "" {
		cfg.RunStore.Driver = driver
	}
	if dsn := os.Getenv("RUN_STORE_DSN"); dsn != "" {
		cfg.RunStore.DSN = dsn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.Target == "" {
		return errors.New("config: pipeline.target is required")
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		return fmt.Errorf("config: pipeline.test_size must be in (0, 1), got %v", p.TestSize)
	}
	switch p.Family {
	case FamilyLinear, FamilyForest:
	default:
		return fmt.Errorf("config: unknown model family %q", p.Family)
	}
	switch c.RunStore.Driver {
	case "", "sqlite3", "pgx":
	default:
		return fmt.Errorf("config: unsupported run_store.driver %q", c.RunStore.Driver)
	}
	if c.RunStore.Enabled() && c.RunStore.DSN == "" {
		return errors.New("config: run_store.dsn is required when a driver is set")
	}
	return nil
}
