package config

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Validate checks a configuration for values the pipeline cannot work with.
func Validate(cfg *Config) error {
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}

	if cfg.Preprocess.Enabled && len(cfg.Preprocess.Command) == 0 {
		return fmt.Errorf("preprocess.command must not be empty when preprocessing is enabled")
	}

	if cfg.Select.Only != "" {
		if _, err := glob.Compile(cfg.Select.Only); err != nil {
			return fmt.Errorf("select.only is not a valid pattern: %w", err)
		}
	}

	return nil
}
