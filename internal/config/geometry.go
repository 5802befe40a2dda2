package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/banshee-data/cornerpoint/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical geometry defaults file.
const DefaultConfigPath = "config/geometry.defaults.json"

// maxConfigSize caps how much of a config file is read.
const maxConfigSize = 1 * 1024 * 1024 // 1MB

// GeometryConfig holds the settings for grid repair and adjustment runs.
// Every field is optional; the Get* methods fall back to built-in defaults
// so partial files are safe.
type GeometryConfig struct {
	// Repair params
	ZSep    *float64 `json:"zsep,omitempty"`    // minimum gap between layer boundaries
	Workers *int     `json:"workers,omitempty"` // goroutines sharing the pillar sweep

	// Adjustment params
	DefaultMode           *string  `json:"default_mode,omitempty"` // "all" or "single"
	InactivateDzThreshold *float64 `json:"inactivate_dz_threshold,omitempty"`

	// Output params
	PlotWidthInches  *float64 `json:"plot_width_inches,omitempty"`
	PlotHeightInches *float64 `json:"plot_height_inches,omitempty"`
	DBPath           *string  `json:"db_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyGeometryConfig returns a GeometryConfig with all fields unset.
func EmptyGeometryConfig() *GeometryConfig {
	return &GeometryConfig{}
}

// DefaultGeometryConfig returns a GeometryConfig with every field set to
// its built-in default.
func DefaultGeometryConfig() *GeometryConfig {
	return &GeometryConfig{
		ZSep:                  ptrFloat64(0.001),
		Workers:               ptrInt(1),
		DefaultMode:           ptrString("all"),
		InactivateDzThreshold: ptrFloat64(0),
		PlotWidthInches:       ptrFloat64(14),
		PlotHeightInches:      ptrFloat64(6),
		DBPath:                ptrString("grids.db"),
	}
}

// LoadGeometryConfig loads a GeometryConfig from a JSON file on disk.
func LoadGeometryConfig(path string) (*GeometryConfig, error) {
	return LoadGeometryConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadGeometryConfigFS loads a GeometryConfig through fsys. The file must
// have a .json extension and be at most 1MB.
func LoadGeometryConfigFS(fsys fsutil.FileSystem, path string) (*GeometryConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGeometryConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *GeometryConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadGeometryConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *GeometryConfig) Validate() error {
	if c.ZSep != nil {
		if !(*c.ZSep > 0) || math.IsInf(*c.ZSep, 0) {
			return fmt.Errorf("zsep must be a positive finite value, got %f", *c.ZSep)
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.DefaultMode != nil {
		switch strings.ToLower(*c.DefaultMode) {
		case "all", "single":
		default:
			return fmt.Errorf("default_mode must be 'all' or 'single', got %q", *c.DefaultMode)
		}
	}
	if c.InactivateDzThreshold != nil && *c.InactivateDzThreshold < 0 {
		return fmt.Errorf("inactivate_dz_threshold must be non-negative, got %f", *c.InactivateDzThreshold)
	}
	if c.PlotWidthInches != nil && *c.PlotWidthInches <= 0 {
		return fmt.Errorf("plot_width_inches must be positive, got %f", *c.PlotWidthInches)
	}
	if c.PlotHeightInches != nil && *c.PlotHeightInches <= 0 {
		return fmt.Errorf("plot_height_inches must be positive, got %f", *c.PlotHeightInches)
	}
	return nil
}

// GetZSep returns the zsep value or the default.
func (c *GeometryConfig) GetZSep() float64 {
	if c.ZSep == nil {
		return 0.001
	}
	return *c.ZSep
}

// GetWorkers returns the workers value or the default.
func (c *GeometryConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetDefaultMode returns the default_mode value or the default.
func (c *GeometryConfig) GetDefaultMode() string {
	if c.DefaultMode == nil || *c.DefaultMode == "" {
		return "all"
	}
	return strings.ToLower(*c.DefaultMode)
}

// GetInactivateDzThreshold returns the inactivate_dz_threshold value or the
// default. Zero disables thin-cell inactivation.
func (c *GeometryConfig) GetInactivateDzThreshold() float64 {
	if c.InactivateDzThreshold == nil {
		return 0
	}
	return *c.InactivateDzThreshold
}

// GetPlotWidthInches returns the plot_width_inches value or the default.
func (c *GeometryConfig) GetPlotWidthInches() float64 {
	if c.PlotWidthInches == nil {
		return 14
	}
	return *c.PlotWidthInches
}

// GetPlotHeightInches returns the plot_height_inches value or the default.
func (c *GeometryConfig) GetPlotHeightInches() float64 {
	if c.PlotHeightInches == nil {
		return 6
	}
	return *c.PlotHeightInches
}

// GetDBPath returns the db_path value or the default.
func (c *GeometryConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "grids.db"
	}
	return *c.DBPath
}
