package parser

// Kind classifies a declaration node.
type Kind string

const (
	KindFunction  Kind = "function"
	KindVariable  Kind = "variable"
	KindClass     Kind = "class"
	KindTemplate  Kind = "template"
	KindNamespace Kind = "namespace"
)

// Extent is the source span of a declaration, 1-indexed and inclusive.
type Extent struct {
	File      string
	StartLine int
	EndLine   int
}

// DeclNode is a single declaration in the parsed tree. Nodes live in the
// Tree's arena and reference each other by index, never by pointer.
type DeclNode struct {
	Kind          Kind
	Name          string // unqualified spelling
	QualifiedName string
	TypeSpelling  string   // return type for functions, declared type for variables
	TypeSuffix    string   // array extents trailing the declared name, variables only
	ParamTypes    []string // ordered parameter type spellings, functions only
	TemplateHead  string   // "template <typename T>" prefix, templates only
	Extent        Extent
	IsDefinition  bool
	IsStatic      bool // static storage class, variables only
	Parent        int // arena index of the enclosing scope, -1 for the root
	Children      []int
}

// Tree is the arena-allocated declaration tree for one translation unit.
type Tree struct {
	Path  string
	Nodes []DeclNode
	Root  int
	Lines []string // original source split by line, 1-indexed via Lines[i-1]
}

// Node returns the arena entry at index i, or nil if i is out of range.
func (t *Tree) Node(i int) *DeclNode {
	if i < 0 || i >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[i]
}

// LineCount reports the number of lines in the original source.
func (t *Tree) LineCount() int {
	return len(t.Lines)
}
