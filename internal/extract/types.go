package extract

import "sort"

// Role tags a candidate with its semantic role in the output.
type Role string

const (
	RoleFunction Role = "function"
	RoleVariable Role = "variable"
	RoleClass    Role = "class"
	RoleTemplate Role = "template"
)

// Candidate is a classified, scope-resolved declaration selected for
// extraction. It references its DeclNode by arena index and carries its
// per-stage outcome in Err: stages record soft failures here instead of
// aborting, and the pipeline moves failed candidates into the run report.
type Candidate struct {
	Node          int
	Role          Role
	QualifiedName string
	ScopePath     []string
	OverloadKey   string
	Text          string
	Err           error
}

// ExtractionSet is the final collection of candidates selected for output,
// in classification order. No two entries share an overload key.
type ExtractionSet struct {
	Candidates []Candidate
}

// ForwardDeclSet holds the type names the emitted header must forward-declare.
type ForwardDeclSet struct {
	names map[string]struct{}
}

// NewForwardDeclSet creates an empty forward-declaration set.
func NewForwardDeclSet() *ForwardDeclSet {
	return &ForwardDeclSet{names: make(map[string]struct{})}
}

// Add records a type name.
func (s *ForwardDeclSet) Add(name string) {
	s.names[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s *ForwardDeclSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns the set sorted by name for deterministic output.
func (s *ForwardDeclSet) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of forward declarations.
func (s *ForwardDeclSet) Len() int {
	return len(s.names)
}
