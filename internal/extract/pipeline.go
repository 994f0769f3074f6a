package extract

import (
	"context"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// ProgressReporter receives pipeline progress callbacks.
type ProgressReporter interface {
	OnClassified(total int)
	OnCandidateExtracted(done, total int, qualifiedName string)
	OnComposed(headerBytes, implBytes int)
}

// Options configures a pipeline run.
type Options struct {
	// HeaderFile is the base name of the emitted header, e.g. "module.h".
	HeaderFile string
	// Only optionally restricts extraction to candidates whose qualified
	// name matches the pattern.
	Only glob.Glob
	// Progress receives stage callbacks; nil disables reporting.
	Progress ProgressReporter
}

// Result is the outcome of a completed run: the rendered artifacts, the
// retained extraction set, and the omission report.
type Result struct {
	Artifacts *Artifacts
	Set       *ExtractionSet
	Forward   *ForwardDeclSet
	Report    Report
}

// Run executes the extraction pipeline over a parsed declaration tree. The
// pipeline is a pure function from tree to (artifacts, omissions): soft
// per-candidate failures accumulate in the report and never abort the run.
// The only error Run itself returns is context cancellation.
func Run(ctx context.Context, tree *parser.Tree, opts Options) (*Result, error) {
	result := &Result{}

	cands := Classify(tree)
	if opts.Only != nil {
		filtered := cands[:0]
		for _, c := range cands {
			if opts.Only.Match(c.QualifiedName) {
				filtered = append(filtered, c)
			}
		}
		cands = filtered
	}
	if opts.Progress != nil {
		opts.Progress.OnClassified(len(cands))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cands = ResolveScopes(tree, cands)
	cands, failed := partition(cands)
	result.Report.add("scope resolution", failed)

	cands = ExtractRanges(tree, cands)
	cands, failed = partition(cands)
	result.Report.add("range extraction", failed)
	if opts.Progress != nil {
		for i, c := range cands {
			opts.Progress.OnCandidateExtracted(i+1, len(cands), c.QualifiedName)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, fwd, dropped := Resolve(tree, cands)
	result.Report.add("dependency resolution", dropped)

	result.Set = set
	result.Forward = fwd
	result.Artifacts = Compose(tree, set, fwd, opts.HeaderFile)
	if opts.Progress != nil {
		opts.Progress.OnComposed(len(result.Artifacts.Header), len(result.Artifacts.Impl))
	}

	return result, nil
}

func partition(cands []Candidate) (clean, failed []Candidate) {
	for _, c := range cands {
		if c.Err != nil {
			failed = append(failed, c)
			continue
		}
		clean = append(clean, c)
	}
	return clean, failed
}
