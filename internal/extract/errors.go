package extract

import (
	"fmt"
	"strings"
)

// ScopeResolutionError reports a candidate whose enclosing-scope chain could
// not be walked to the root. The candidate is dropped; the run continues.
type ScopeResolutionError struct {
	QualifiedName string
	Reason        string
}

func (e *ScopeResolutionError) Error() string {
	return fmt.Sprintf("scope resolution: %s: %s", e.QualifiedName, e.Reason)
}

// RangeExtractionError reports a candidate whose source extent could not be
// mapped to literal text. The candidate is dropped; the run continues.
type RangeExtractionError struct {
	QualifiedName string
	Reason        string
}

func (e *RangeExtractionError) Error() string {
	return fmt.Sprintf("range extraction: %s: %s", e.QualifiedName, e.Reason)
}

// UnresolvedDependencyError reports a candidate that structurally requires a
// complete type the extraction set does not define. Emitting a forward
// declaration there would not compile, so the candidate is dropped instead.
type UnresolvedDependencyError struct {
	QualifiedName string
	TypeName      string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("unresolved dependency: %s requires complete type %s", e.QualifiedName, e.TypeName)
}

// Omission records one dropped candidate for the run-end summary.
type Omission struct {
	QualifiedName string
	Stage         string
	Err           error
}

// Report collects per-candidate omissions across pipeline stages. Fatal
// errors never land here; they abort the run.
type Report struct {
	Omissions []Omission
}

func (r *Report) add(stage string, cands []Candidate) {
	for _, c := range cands {
		if c.Err == nil {
			continue
		}
		name := c.QualifiedName
		r.Omissions = append(r.Omissions, Omission{QualifiedName: name, Stage: stage, Err: c.Err})
	}
}

// Summary renders the omission list for end-of-run reporting. Empty when the
// extraction completed without drops.
func (r *Report) Summary() string {
	if len(r.Omissions) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d candidate(s) omitted:\n", len(r.Omissions))
	for _, o := range r.Omissions {
		fmt.Fprintf(&b, "  %s (%s): %v\n", o.QualifiedName, o.Stage, o.Err)
	}
	return b.String()
}
