// Package config holds the report configuration: where inputs and charts
// live, which datasets are processed, and the per-chart style.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full report configuration.
type Config struct {
	BaseDir   string    `yaml:"base_dir" json:"base_dir"`
	SrcDir    string    `yaml:"src_dir" json:"src_dir"`
	GraphsDir string    `yaml:"graphs_dir" json:"graphs_dir"`
	Show      bool      `yaml:"show" json:"show"`
	DBPath    string    `yaml:"db_path" json:"db_path"`
	Export    Export    `yaml:"export" json:"export"`
	Server    Server    `yaml:"server" json:"server"`
	Style     Style     `yaml:"style" json:"style"`
	Datasets  []Dataset `yaml:"datasets" json:"datasets"`
}

// Export controls the optional summary outputs written next to the charts.
type Export struct {
	CSV      bool   `yaml:"csv" json:"csv"`
	XLSX     bool   `yaml:"xlsx" json:"xlsx"`
	Workbook string `yaml:"workbook" json:"workbook"`
}

// Server configures the HTTP API.
type Server struct {
	Addr       string `yaml:"addr" json:"addr"`
	JobTimeout string `yaml:"job_timeout" json:"job_timeout"` // e.g. "5m"
}

// Dataset describes one input table and the two charts drawn from it.
type Dataset struct {
	Name        string    `yaml:"name" json:"name"`
	File        string    `yaml:"file" json:"file"`
	Sheet       string    `yaml:"sheet,omitempty" json:"sheet,omitempty"` // xlsx inputs only
	Index       string    `yaml:"index" json:"index"`
	DropColumns []string  `yaml:"drop_columns,omitempty" json:"drop_columns,omitempty"`
	Bar         ChartSpec `yaml:"bar" json:"bar"`
	Correlation ChartSpec `yaml:"correlation" json:"correlation"`
}

// ChartSpec names a chart file (without extension) and its title.
type ChartSpec struct {
	Filename string `yaml:"filename" json:"filename"`
	Title    string `yaml:"title" json:"title"`
}

// Default returns the configuration of the literature-review report.
func Default() *Config {
	return &Config{
		BaseDir:   ".",
		SrcDir:    "src",
		GraphsDir: "graphs",
		Export: Export{
			Workbook: "continuum_summary.xlsx",
		},
		Server: Server{
			Addr:       ":8080",
			JobTimeout: "5m",
		},
		Style: DefaultStyle(),
		Datasets: []Dataset{
			{
				Name:        "datatype",
				File:        "Continuum_tipos_de_dados - DataType.csv",
				Index:       "Authors",
				DropColumns: []string{"Privacy concerns?"},
				Bar: ChartSpec{
					Filename: "barplot_datatype",
					Title:    "Nome maneiro",
				},
				Correlation: ChartSpec{
					Filename: "correlation_datatype",
					Title:    "Correlation of consumer concern regarding the different types of personal data",
				},
			},
			{
				Name:  "datause",
				File:  "Continuum_tipos_de_dados - DataUse.csv",
				Index: "Authors",
				Bar: ChartSpec{
					Filename: "barplot_datause",
					Title:    "Total of percentage  regarding literature review and consumer concern",
				},
				Correlation: ChartSpec{
					Filename: "correlation_datause",
					Title:    "Nome maneiro",
				},
			},
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value; a datasets list in the file replaces the default one.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every dataset can be located and charted.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets configured")
	}
	seen := make(map[string]bool)
	for i, ds := range c.Datasets {
		switch {
		case ds.Name == "":
			return fmt.Errorf("dataset %d: name is required", i)
		case seen[ds.Name]:
			return fmt.Errorf("dataset %q: duplicate name", ds.Name)
		case ds.File == "":
			return fmt.Errorf("dataset %q: file is required", ds.Name)
		case ds.Index == "":
			return fmt.Errorf("dataset %q: index column is required", ds.Name)
		case ds.Bar.Filename == "" || ds.Correlation.Filename == "":
			return fmt.Errorf("dataset %q: chart filenames are required", ds.Name)
		}
		seen[ds.Name] = true
	}
	return c.Style.Validate()
}

// SourceDir returns the directory holding the input tables.
func (c *Config) SourceDir() string {
	return c.resolve(c.SrcDir)
}

// ChartsDir returns the directory charts are written to.
func (c *Config) ChartsDir() string {
	return c.resolve(c.GraphsDir)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.BaseDir, dir)
}
