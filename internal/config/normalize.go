package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeCue()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeOutput() error {
	var err error
	if strings.TrimSpace(c.Output.Directory) == "" {
		c.Output.Directory = "."
	}
	if c.Output.Directory, err = expandPath(c.Output.Directory); err != nil {
		return fmt.Errorf("output.directory: %w", err)
	}
	c.Output.Template = strings.TrimSpace(c.Output.Template)
	if c.Output.Template == "" {
		c.Output.Template = defaultOutputTemplate
	}
	c.Output.Overwrite = strings.ToLower(strings.TrimSpace(c.Output.Overwrite))
	if c.Output.Overwrite == "" {
		c.Output.Overwrite = defaultOverwrite
	}
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpeg = strings.TrimSpace(c.Encoder.FFmpeg)
	if c.Encoder.FFmpeg == "" {
		c.Encoder.FFmpeg = defaultEncoderBinary
	}
	// An empty preset is meaningful (copy-or-flac resolution), so it is
	// never defaulted here.
	c.Encoder.Preset = strings.ToLower(strings.TrimSpace(c.Encoder.Preset))
}

func (c *Config) normalizeCue() {
	c.Cue.Encoding = strings.TrimSpace(c.Cue.Encoding)
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
