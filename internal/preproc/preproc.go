// Package preproc invokes the external C++ preprocessor as a validation
// gate: a source file whose includes or macros do not expand cleanly cannot
// yield a sound extraction, so the run fails before parsing.
package preproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PreprocessError is a fatal external-tool failure.
type PreprocessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *PreprocessError) Error() string {
	msg := fmt.Sprintf("preprocess: %q exited with code %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Preprocessor runs an external preprocessor command (cpp, clang++ -E, ...)
// as a single synchronous call with no retry.
type Preprocessor struct {
	command []string
}

// New creates a preprocessor around the given command and leading arguments.
func New(command []string) *Preprocessor {
	if len(command) == 0 {
		command = []string{"cpp"}
	}
	return &Preprocessor{command: command}
}

// Run expands sourcePath with the given compilation flags and returns the
// path of the expanded output file. The caller owns the returned file and
// should remove it when done.
func (p *Preprocessor) Run(ctx context.Context, sourcePath string, flags []string) (string, error) {
	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("cpp-split-%s.ii", uuid.NewString()))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create preprocessor output: %w", err)
	}
	defer out.Close()

	args := append(append([]string{}, p.command[1:]...), flags...)
	args = append(args, sourcePath)

	cmd := exec.CommandContext(ctx, p.command[0], args...)
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return "", &PreprocessError{
			Command:  strings.Join(append(append([]string{}, p.command...), flags...), " "),
			ExitCode: exitCode,
			Stderr:   stderr.String(),
		}
	}

	return outPath, nil
}
