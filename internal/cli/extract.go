package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cpp-split/internal/config"
	"github.com/mvp-joe/cpp-split/internal/extract"
	"github.com/mvp-joe/cpp-split/internal/parser"
	"github.com/mvp-joe/cpp-split/internal/preproc"
)

var (
	outFlag          string
	nameFlag         string
	onlyFlag         string
	parserFlagsFlag  string
	noPreprocessFlag bool
	watchFlag        bool
	quietFlag        bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <source.cpp>",
	Short: "Extract declarations into a header/implementation pair",
	Long: `Extract classifies the declarations of a single C++ source file and
re-emits them as <name>.h and <name>.cpp in the output directory.

The pipeline:
  - Runs the external preprocessor as a validation gate
  - Parses the original source into a declaration tree
  - Classifies functions, variables, classes, and templates
  - Deduplicates overloads and computes forward declarations
  - Composes and atomically writes the output pair

Candidates that fail scope, range, or dependency resolution are dropped and
reported at the end of the run; a preprocessor or parser failure aborts it.

Examples:
  # Extract everything from widgets.cpp into the current directory
  cpp-split extract widgets.cpp

  # Write point.h/point.cpp into out/
  cpp-split extract geometry.cpp -o out --name point

  # Extract only the Parser:: members
  cpp-split extract monolith.cpp --only 'Parser::*'

  # Re-extract whenever the source changes
  cpp-split extract widgets.cpp --watch
`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory (default from config, else .)")
	extractCmd.Flags().StringVar(&nameFlag, "name", "", "Base name of the emitted pair (default: source file name)")
	extractCmd.Flags().StringVar(&onlyFlag, "only", "", "Only extract candidates whose qualified name matches this pattern")
	extractCmd.Flags().StringVar(&parserFlagsFlag, "flags", "", "Compilation flags forwarded to the preprocessor (space separated)")
	extractCmd.Flags().BoolVar(&noPreprocessFlag, "no-preprocess", false, "Skip the external preprocessor gate")
	extractCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the source file and re-extract on change")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling extraction...")
		cancel()
	}()

	sourcePath := args[0]
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source file: %w", err)
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.NewLoader(rootDir).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cfg)

	baseName := cfg.Output.Name
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}

	if err := runOnce(ctx, cfg, sourcePath, baseName); err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}

	watcher, err := extract.NewSourceWatcher(sourcePath, func() {
		if err := runOnce(ctx, cfg, sourcePath, baseName); err != nil {
			log.Printf("Extraction failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	if !quietFlag {
		log.Printf("Watching %s for changes (Ctrl+C to stop)", sourcePath)
	}
	<-ctx.Done()
	return nil
}

// applyFlags lets command-line flags win over file and environment config.
func applyFlags(cfg *config.Config) {
	if outFlag != "" {
		cfg.Output.Dir = outFlag
	}
	if nameFlag != "" {
		cfg.Output.Name = nameFlag
	}
	if onlyFlag != "" {
		cfg.Select.Only = onlyFlag
	}
	if parserFlagsFlag != "" {
		cfg.Parser.Flags = append(cfg.Parser.Flags, strings.Fields(parserFlagsFlag)...)
	}
	if noPreprocessFlag {
		cfg.Preprocess.Enabled = false
	}
}

// runOnce executes one complete extraction: preprocess gate, parse, pipeline,
// atomic write, omission summary.
func runOnce(ctx context.Context, cfg *config.Config, sourcePath, baseName string) error {
	if cfg.Preprocess.Enabled {
		expanded, err := preproc.New(cfg.Preprocess.Command).Run(ctx, sourcePath, cfg.Parser.Flags)
		if err != nil {
			return fmt.Errorf("preprocessor stage: %w", err)
		}
		// The expansion is only a gate; extraction reads the original file.
		os.Remove(expanded)
	}

	tree, err := parser.NewFrontend().Parse(ctx, sourcePath, cfg.Parser.Flags)
	if err != nil {
		return fmt.Errorf("parser stage: %w", err)
	}

	opts := extract.Options{
		HeaderFile: baseName + ".h",
		Progress:   NewCLIProgressReporter(quietFlag),
	}
	if cfg.Select.Only != "" {
		only, err := glob.Compile(cfg.Select.Only)
		if err != nil {
			return fmt.Errorf("invalid --only pattern: %w", err)
		}
		opts.Only = only
	}

	result, err := extract.Run(ctx, tree, opts)
	if err != nil {
		return err
	}

	writer, err := extract.NewPairWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if err := writer.WritePair(baseName+".h", baseName+".cpp", result.Artifacts); err != nil {
		return err
	}

	if summary := result.Report.Summary(); summary != "" {
		fmt.Fprint(os.Stderr, summary)
	}
	if !quietFlag {
		log.Printf("Wrote %s and %s (%d candidate(s), %d forward declaration(s))",
			filepath.Join(cfg.Output.Dir, baseName+".h"),
			filepath.Join(cfg.Output.Dir, baseName+".cpp"),
			len(result.Set.Candidates), result.Forward.Len())
	}
	return nil
}
