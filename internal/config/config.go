package config

// Config represents the complete cpp-split configuration.
// It can be loaded from .cppsplit/config.yml with environment variable
// overrides.
type Config struct {
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Preprocess PreprocessConfig `yaml:"preprocess" mapstructure:"preprocess"`
	Parser     ParserConfig     `yaml:"parser" mapstructure:"parser"`
	Select     SelectConfig     `yaml:"select" mapstructure:"select"`
}

// OutputConfig controls where and under what base name the pair is written.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`   // output directory, created if absent
	Name string `yaml:"name" mapstructure:"name"` // base name; empty derives it from the source file
}

// PreprocessConfig controls the external preprocessor gate.
type PreprocessConfig struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	Command []string `yaml:"command" mapstructure:"command"` // e.g. ["clang++", "-E"]
}

// ParserConfig carries compilation flags forwarded opaquely to the
// preprocessor and parser front-end.
type ParserConfig struct {
	Flags []string `yaml:"flags" mapstructure:"flags"` // include paths, -std=, ...
}

// SelectConfig restricts which candidates are extracted.
type SelectConfig struct {
	Only string `yaml:"only" mapstructure:"only"` // glob over qualified names, empty selects all
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: ".",
		},
		Preprocess: PreprocessConfig{
			Enabled: true,
			Command: []string{"cpp"},
		},
	}
}
