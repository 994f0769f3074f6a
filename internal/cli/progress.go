package cli

import (
	"log"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements extraction progress reporting with a
// progress bar.
type CLIProgressReporter struct {
	quiet        bool
	candidateBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnClassified(total int) {
	if c.quiet {
		return
	}
	log.Printf("Classified %d extraction candidate(s)", total)
	if total > 0 {
		c.candidateBar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (c *CLIProgressReporter) OnCandidateExtracted(done, total int, qualifiedName string) {
	if c.quiet || c.candidateBar == nil {
		return
	}
	c.candidateBar.Set(done)
}

func (c *CLIProgressReporter) OnComposed(headerBytes, implBytes int) {
	if c.quiet {
		return
	}
	if c.candidateBar != nil {
		c.candidateBar.Finish()
	}
	log.Printf("Composed header (%d bytes) and implementation (%d bytes)", headerBytes, implBytes)
}
