package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateBluray(); err != nil {
		return err
	}
	if c.Scan.Workers < 1 || c.Scan.Workers > maxScanWorkers {
		return fmt.Errorf("scan.workers must be between 1 and %d", maxScanWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case OutputAuto, OutputTable, OutputTSV, OutputJSON:
		return nil
	}
	return fmt.Errorf("output.format: unsupported value %q (use auto, table, tsv or json)", c.Output.Format)
}

func (c *Config) validateBluray() error {
	if c.Bluray.SweepMinSeconds <= 0 {
		return errors.New("bluray.sweep_min_seconds must be > 0")
	}
	if c.Bluray.SweepRatio <= 0 || c.Bluray.SweepRatio > 1 {
		return errors.New("bluray.sweep_ratio must be in (0, 1]")
	}
	for i, pattern := range c.Bluray.ExtraPatterns {
		if len(pattern) < 2 || len(pattern) > 3 {
			return fmt.Errorf("bluray.extra_patterns[%d]: want 2 or 3 values, got %d", i, len(pattern))
		}
		for _, secs := range pattern {
			if secs <= 0 {
				return fmt.Errorf("bluray.extra_patterns[%d]: values must be positive seconds", i)
			}
		}
	}
	return nil
}
