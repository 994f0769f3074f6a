package extract

import (
	"fmt"
	"os"
	"path/filepath"
)

// PairWriter writes the header/implementation pair atomically using the
// temp-then-rename pattern, so a concurrent reader never observes a torn
// file. Existing files of the same name are overwritten.
type PairWriter struct {
	outputDir string
	tempDir   string
}

// NewPairWriter creates a writer, creating the output directory if absent.
func NewPairWriter(outputDir string) (*PairWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files from an interrupted run.
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &PairWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// WritePair writes both artifacts and removes the temp directory.
func (w *PairWriter) WritePair(headerName, implName string, a *Artifacts) error {
	if err := w.writeFile(headerName, a.Header); err != nil {
		return err
	}
	if err := w.writeFile(implName, a.Impl); err != nil {
		return err
	}
	return os.RemoveAll(w.tempDir)
}

func (w *PairWriter) writeFile(filename string, data []byte) error {
	tempPath := filepath.Join(w.tempDir, filename)
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := filepath.Join(w.outputDir, filename)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
