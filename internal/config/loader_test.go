package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Empty(t, cfg.Output.Name)
	assert.True(t, cfg.Preprocess.Enabled)
	assert.Equal(t, []string{"cpp"}, cfg.Preprocess.Command)
	assert.Empty(t, cfg.Parser.Flags)
	assert.Empty(t, cfg.Select.Only)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configDir := filepath.Join(root, ".cppsplit")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	content := `output:
  dir: build/gen
  name: module
preprocess:
  enabled: false
parser:
  flags:
    - "-std=c++17"
    - "-Iinclude"
select:
  only: "geo::*"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, "build/gen", cfg.Output.Dir)
	assert.Equal(t, "module", cfg.Output.Name)
	assert.False(t, cfg.Preprocess.Enabled)
	assert.Equal(t, []string{"-std=c++17", "-Iinclude"}, cfg.Parser.Flags)
	assert.Equal(t, "geo::*", cfg.Select.Only)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	configDir := filepath.Join(root, ".cppsplit")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"),
		[]byte("output:\n  dir: from-file\n"), 0644))

	t.Setenv("CPPSPLIT_OUTPUT_DIR", "from-env")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.Dir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configDir := filepath.Join(root, ".cppsplit")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"),
		[]byte("output: ["), 0644))

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidPattern(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configDir := filepath.Join(root, ".cppsplit")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"),
		[]byte("select:\n  only: \"[\"\n"), 0644))

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
