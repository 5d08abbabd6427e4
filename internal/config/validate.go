package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.Multiplier < 0 {
		return errors.New("analysis.multiplier must not be negative")
	}
	if c.Analysis.MinThreshold < 0 {
		return errors.New("analysis.min_threshold must not be negative")
	}
	if c.Analysis.ReferenceContrast == c.Analysis.ComparisonContrast {
		return errors.New("analysis.reference_contrast and analysis.comparison_contrast must differ")
	}
	if c.Analysis.SingularTolerance <= 0 || c.Analysis.SingularTolerance >= 1 {
		return errors.New("analysis.singular_tolerance must be in (0, 1)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
