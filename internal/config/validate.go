package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDropbox(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateDropbox() error {
	if err := ensurePositiveMap(map[string]int{
		"dropbox.batch_size":      c.Dropbox.BatchSize,
		"dropbox.timeout_seconds": c.Dropbox.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Dropbox.RequestDelayMs < 0 {
		return errors.New("dropbox.request_delay_ms must be >= 0")
	}
	if c.Dropbox.BatchDelayMs < 0 {
		return errors.New("dropbox.batch_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
