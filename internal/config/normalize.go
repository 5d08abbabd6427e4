package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDB) == "" {
		c.Paths.ResultsDB = defaultResultsDB
	}
	if c.Paths.ResultsDB, err = expandPath(c.Paths.ResultsDB); err != nil {
		return fmt.Errorf("paths.results_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.Multiplier == 0 {
		c.Analysis.Multiplier = defaultMultiplier
	}
	if c.Analysis.MinThreshold == 0 {
		c.Analysis.MinThreshold = defaultMinThreshold
	}
	if c.Analysis.ReferenceContrast == 0 && c.Analysis.ComparisonContrast == 0 {
		c.Analysis.ReferenceContrast = defaultReferenceContrast
		c.Analysis.ComparisonContrast = defaultComparisonContrast
	}
	if c.Analysis.SingularTolerance == 0 {
		c.Analysis.SingularTolerance = defaultSingularTolerance
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
