package model

import (
	"sort"
	"strings"
	"time"
)

// AllSpecs is the registry name of the merged workbook covering every specification
const AllSpecs = "All"

// Config holds all speclens configuration
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Columns     ColumnConfig      `yaml:"columns" mapstructure:"columns"`
	Specs       []SpecSource      `yaml:"specs" mapstructure:"specs"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the annotated workbooks
type DataConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`               // Folder holding the .xlsx files
	SheetName string `yaml:"sheet_name" mapstructure:"sheet_name"` // Sheet read from every workbook
}

// ColumnConfig names the header cells of the annotated sheet
type ColumnConfig struct {
	Sentence         string `yaml:"sentence" mapstructure:"sentence"`
	Label            string `yaml:"label" mapstructure:"label"`
	InformationModel string `yaml:"information_model" mapstructure:"information_model"`
	Relational       string `yaml:"relational" mapstructure:"relational"`
	Constraint       string `yaml:"constraint" mapstructure:"constraint"`
	Quotation        string `yaml:"quotation" mapstructure:"quotation"`
	Numeric          string `yaml:"numeric" mapstructure:"numeric"`
}

// Category returns the header configured for a tracked category
func (c ColumnConfig) Category(cat Category) string {
	switch cat {
	case InformationModel:
		return c.InformationModel
	case Relational:
		return c.Relational
	case Constraint:
		return c.Constraint
	case Quotation:
		return c.Quotation
	case Numeric:
		return c.Numeric
	default:
		return ""
	}
}

// SpecSource registers one specification workbook under a short display name
type SpecSource struct {
	Name string `yaml:"name" mapstructure:"name"` // Display name, e.g. "PackML"
	File string `yaml:"file" mapstructure:"file"` // Workbook file name inside Data.Dir
}

// Key returns the case-insensitive lookup key of the specification
func (s SpecSource) Key() string {
	return strings.ToLower(s.Name)
}

// CacheConfig configures the parsed-workbook cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures how many specifications are processed at once
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures rendered artifacts
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool   `yaml:"json" mapstructure:"json"`         // Write a JSON report next to the charts
	HTML    bool   `yaml:"html" mapstructure:"html"`         // Write an HTML index page
	Width   int    `yaml:"width_in" mapstructure:"width_in"` // Chart width in inches
	Height  int    `yaml:"height_in" mapstructure:"height_in"`

	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"` // Prometheus textfile written after each run; empty disables
}

// DefaultConfig returns the configuration used when no file or env overrides exist
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       "oke_dataset/excel/",
			SheetName: "Sheet1",
		},
		Columns: ColumnConfig{
			Sentence:         "Sentence",
			Label:            "Label",
			InformationModel: "IM_keywords",
			Relational:       "Relational_keywords",
			Constraint:       "Constraint_keywords",
			Quotation:        "Quotes",
			Numeric:          "Numbers",
		},
		Specs: []SpecSource{
			{Name: AllSpecs, File: "All.xlsx"},
			{Name: "AutoID", File: "AutoID.xlsx"},
			{Name: "IOLink", File: "IOLink.xlsx"},
			{Name: "ISA95", File: "ISA95.xlsx"},
			{Name: "MachineTools", File: "MachineTools.xlsx"},
			{Name: "MV1CCM", File: "MV1CCM.xlsx"},
			{Name: "MV2AMCM", File: "MV2AMCM.xlsx"},
			{Name: "PackML", File: "PackML.xlsx"},
			{Name: "PADIM", File: "PADIM.xlsx"},
			{Name: "Profinet", File: "Profinet.xlsx"},
			{Name: "Robotics", File: "Robotics.xlsx"},
			{Name: "UAFX", File: "UAFX.xlsx"},
			{Name: "Weihenstephan", File: "Weihenstephan.xlsx"},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".speclens-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Dir:    "output/",
			JSON:   true,
			HTML:   true,
			Width:  14,
			Height: 13,
		},
	}
}

// LookupSpec resolves a specification by name, ignoring case
func (c *Config) LookupSpec(name string) (SpecSource, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.Specs {
		if s.Key() == key {
			return s, nil
		}
	}
	return SpecSource{}, &UnknownSpecError{Name: name, Known: c.SpecNames()}
}

// SpecNames returns the lower-cased registry names, sorted
func (c *Config) SpecNames() []string {
	names := make([]string, 0, len(c.Specs))
	for _, s := range c.Specs {
		names = append(names, s.Key())
	}
	sort.Strings(names)
	return names
}

// IndividualSpecs returns every registered specification except the merged one, in registry order
func (c *Config) IndividualSpecs() []SpecSource {
	out := make([]SpecSource, 0, len(c.Specs))
	for _, s := range c.Specs {
		if strings.EqualFold(s.Name, AllSpecs) {
			continue
		}
		out = append(out, s)
	}
	return out
}
