package extract

import (
	"strings"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// Artifacts are the two rendered output files.
type Artifacts struct {
	Header []byte
	Impl   []byte
}

// scopedText is one rendered declaration plus the namespace chain it must be
// re-wrapped in. The extracted text carries no enclosing namespace lines, so
// the composer reopens the namespaces around every emitted declaration;
// names inside the wrapper stay unqualified.
type scopedText struct {
	scope []string
	text  string
}

// Compose renders the header/implementation pair. Prototypes are rendered
// from DeclNode metadata only and bodies come from the range extractor only,
// so signatures and bodies cannot drift apart. Class definitions always go
// in the header as complete types; the implementation file carries function
// bodies and variable definitions in classification order, each wrapped in
// its candidate's namespace chain. Adjacent candidates sharing a scope share
// one namespace block.
func Compose(tree *parser.Tree, set *ExtractionSet, fwd *ForwardDeclSet, headerFile string) *Artifacts {
	guard := GuardMacro(headerFile)

	var header strings.Builder
	header.WriteString("#ifndef " + guard + "\n")
	header.WriteString("#define " + guard + "\n")

	if fwd.Len() > 0 {
		header.WriteString("\n")
		for _, name := range fwd.Names() {
			header.WriteString("class " + name + ";\n")
		}
	}

	var prototypes, externs, classes []scopedText
	for _, c := range set.Candidates {
		node := tree.Node(c.Node)
		if node == nil {
			continue
		}
		name := localName(c.QualifiedName, c.ScopePath)
		switch {
		case node.ParamTypes != nil:
			// An out-of-line member keeps its declaration inside the owning
			// class; re-declaring it qualified would be ill-formed.
			if strings.Contains(name, "::") {
				continue
			}
			prototypes = append(prototypes, scopedText{c.ScopePath, renderPrototype(node, name)})
		case c.Role == RoleVariable:
			if line, ok := renderExtern(node, name); ok {
				externs = append(externs, scopedText{c.ScopePath, line})
			}
		default:
			classes = append(classes, scopedText{c.ScopePath, ensureTerminated(c.Text)})
		}
	}

	writeScopedLines(&header, prototypes)
	writeScopedLines(&header, externs)
	writeScopedBlocks(&header, classes)

	header.WriteString("\n#endif // " + guard + "\n")

	var impl strings.Builder
	impl.WriteString("#include \"" + headerFile + "\"\n")

	var bodies []scopedText
	seenExtents := make(map[int]bool)
	for _, c := range set.Candidates {
		node := tree.Node(c.Node)
		if node == nil {
			continue
		}
		if node.ParamTypes == nil && c.Role != RoleVariable {
			// Class bodies live in the header.
			continue
		}
		// A multi-declarator statement yields one candidate per name but a
		// single definition in the output.
		if seenExtents[node.Extent.StartLine] {
			continue
		}
		seenExtents[node.Extent.StartLine] = true
		bodies = append(bodies, scopedText{c.ScopePath, c.Text})
	}
	writeScopedBlocks(&impl, bodies)

	return &Artifacts{
		Header: []byte(header.String()),
		Impl:   []byte(impl.String()),
	}
}

// GuardMacro derives the include-guard macro from the header filename:
// uppercased, with every non-alphanumeric byte mapped to an underscore.
func GuardMacro(filename string) string {
	var b strings.Builder
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// localName strips the candidate's scope chain off its qualified name. What
// remains is the spelling valid inside the reopened namespace block; a "::"
// left over marks an out-of-class member definition.
func localName(qualified string, scopePath []string) string {
	if len(scopePath) == 0 {
		return qualified
	}
	return strings.TrimPrefix(qualified, strings.Join(scopePath, "::")+"::")
}

// renderPrototype renders a function declaration from node metadata. The
// template header, when present, stays attached to the declaration.
func renderPrototype(node *parser.DeclNode, name string) string {
	var b strings.Builder
	if node.TemplateHead != "" {
		b.WriteString(node.TemplateHead + " ")
	}
	if node.TypeSpelling != "" {
		b.WriteString(node.TypeSpelling + " ")
	}
	b.WriteString(name)
	b.WriteString("(" + strings.Join(node.ParamTypes, ", ") + ");")
	return b.String()
}

// renderExtern renders a variable's header declaration. Out-of-class member
// definitions get no extern line: their declaration already lives inside the
// owning class definition. Static variables get none either: their internal
// linkage makes a header extern name a different entity. Const definitions
// keep their extern line; the implementation file includes the header first,
// so the extern declaration gives the definition external linkage.
func renderExtern(node *parser.DeclNode, name string) (string, bool) {
	if strings.Contains(name, "::") {
		return "", false
	}
	if node.IsStatic {
		return "", false
	}
	return "extern " + node.TypeSpelling + " " + name + node.TypeSuffix + ";", true
}

func ensureTerminated(text string) string {
	trimmed := strings.TrimRight(text, " \t\n")
	if strings.HasSuffix(trimmed, ";") {
		return text
	}
	return trimmed + ";"
}

// writeScopedLines renders a section of one-line declarations. Adjacent
// entries with an identical scope chain share one namespace wrapper, keeping
// classification order intact.
func writeScopedLines(b *strings.Builder, items []scopedText) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	for i := 0; i < len(items); {
		j := groupEnd(items, i)
		openNamespaces(b, items[i].scope)
		for _, it := range items[i:j] {
			b.WriteString(it.text + "\n")
		}
		closeNamespaces(b, items[i].scope)
		i = j
	}
}

// writeScopedBlocks renders multi-line bodies, blank-line separated, with
// adjacent same-scope bodies sharing one namespace wrapper.
func writeScopedBlocks(b *strings.Builder, items []scopedText) {
	for i := 0; i < len(items); {
		j := groupEnd(items, i)
		b.WriteString("\n")
		openNamespaces(b, items[i].scope)
		for k := i; k < j; k++ {
			if k > i {
				b.WriteString("\n")
			}
			b.WriteString(items[k].text + "\n")
		}
		closeNamespaces(b, items[i].scope)
		i = j
	}
}

func groupEnd(items []scopedText, start int) int {
	end := start + 1
	for end < len(items) && sameScope(items[end].scope, items[start].scope) {
		end++
	}
	return end
}

func sameScope(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func openNamespaces(b *strings.Builder, scope []string) {
	for _, ns := range scope {
		b.WriteString("namespace " + ns + " {\n")
	}
}

func closeNamespaces(b *strings.Builder, scope []string) {
	for i := len(scope) - 1; i >= 0; i-- {
		b.WriteString("} // namespace " + scope[i] + "\n")
	}
}
