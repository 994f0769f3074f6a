package preproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessor_Run(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "main.cpp")
	require.NoError(t, os.WriteFile(source, []byte("int counter;\n"), 0644))

	// cat stands in for a real preprocessor: it copies input to stdout.
	p := New([]string{"cat"})
	outPath, err := p.Run(context.Background(), source, nil)
	require.NoError(t, err)
	defer os.Remove(outPath)

	expanded, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "int counter;\n", string(expanded))
}

func TestPreprocessor_RunFailure(t *testing.T) {
	t.Parallel()

	p := New([]string{"sh", "-c", "echo 'boom' >&2; exit 3"})
	outPath, err := p.Run(context.Background(), "ignored.cpp", nil)
	require.Error(t, err)
	assert.Empty(t, outPath)

	var perr *PreprocessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.ExitCode)
	assert.Contains(t, perr.Stderr, "boom")
	assert.Contains(t, perr.Error(), "exited with code 3")
}

func TestPreprocessor_DefaultCommand(t *testing.T) {
	t.Parallel()

	p := New(nil)
	assert.Equal(t, []string{"cpp"}, p.command)
}

func TestPreprocessor_PassesFlags(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "main.cpp")
	require.NoError(t, os.WriteFile(source, []byte("int x;\n"), 0644))

	// Echo reflects its arguments, so the output records the flag order:
	// command args, then flags, then the source path.
	p := New([]string{"echo", "-n"})
	outPath, err := p.Run(context.Background(), source, []string{"-DDEBUG", "-I."})
	require.NoError(t, err)
	defer os.Remove(outPath)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "-DDEBUG -I. "+source, string(out))
}
