package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Overwrite {
	case "prompt", "force", "skip":
	default:
		return fmt.Errorf("output.overwrite must be one of prompt, force, skip (got %q)", c.Output.Overwrite)
	}
	if c.Output.Template == "" {
		return errors.New("output.template must be set")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.Jobs < 0 {
		return errors.New("split.jobs must be zero (auto) or positive")
	}
	if c.Split.JobTimeoutSeconds < 0 {
		return errors.New("split.job_timeout_seconds must be zero (no timeout) or positive")
	}
	return nil
}
