package extract

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// Dependency edge labels: how a candidate's signature uses a type.
const (
	usageIncompleteOK     = "incomplete-ok"
	usageRequiresComplete = "requires-complete"
)

// Resolve deduplicates overloaded candidates and computes the forward
// declarations the emitted header needs.
//
// Deduplication keys on qualified name plus ordered parameter types; return
// types never distinguish overloads. The first classified occurrence wins and
// later collisions are discarded, keeping the ordering stable.
//
// Dependency analysis builds a directed graph from each retained candidate to
// every named user type its signature references. A referenced type the set
// does not define becomes a forward declaration when an incomplete type
// suffices at the declaration point; a use that structurally requires the
// complete type (a plain class-typed variable, or any template-argument use)
// drops the candidate with an UnresolvedDependencyError instead of emitting
// a declaration that cannot compile.
func Resolve(tree *parser.Tree, cands []Candidate) (*ExtractionSet, *ForwardDeclSet, []Candidate) {
	retained := dedupe(cands)

	defined := make(map[string]bool)
	for _, c := range retained {
		node := tree.Node(c.Node)
		if node == nil {
			continue
		}
		if node.ParamTypes == nil && (c.Role == RoleClass || c.Role == RoleTemplate) {
			defined[node.Name] = true
		}
	}

	deps := graph.New(graph.StringHash, graph.Directed())
	refsByCand := make([][]typeRef, len(retained))
	byKey := make(map[string]int, len(retained))

	for i, c := range retained {
		node := tree.Node(c.Node)
		if node == nil {
			continue
		}
		refs := candidateRefs(node, c.Role)
		refsByCand[i] = refs
		if len(refs) == 0 {
			continue
		}

		key := "decl:" + c.OverloadKey
		byKey[key] = i
		deps.AddVertex(key)
		for _, ref := range refs {
			deps.AddVertex(ref.Name)
			if err := deps.AddEdge(key, ref.Name, graph.EdgeData(ref.Usage)); err != nil {
				// A signature may reference the same type more than once.
				continue
			}
		}
	}

	// Drop every candidate that requires a complete type the set does not
	// define. The predecessor map gives all dependents of a type at once.
	pred, err := deps.PredecessorMap()
	if err == nil {
		for _, typeName := range sortedTypeVertices(pred) {
			if defined[typeName] {
				continue
			}
			for _, key := range sortedKeys(pred[typeName]) {
				edge := pred[typeName][key]
				if edge.Properties.Data != usageRequiresComplete {
					continue
				}
				if i, ok := byKey[key]; ok && retained[i].Err == nil {
					retained[i].Err = &UnresolvedDependencyError{
						QualifiedName: retained[i].QualifiedName,
						TypeName:      typeName,
					}
				}
			}
		}
	}

	// Forward declarations come only from candidates that survived.
	fwd := NewForwardDeclSet()
	set := &ExtractionSet{}
	var dropped []Candidate
	for i, c := range retained {
		if c.Err != nil {
			dropped = append(dropped, c)
			continue
		}
		for _, ref := range refsByCand[i] {
			if !defined[ref.Name] {
				fwd.Add(ref.Name)
			}
		}
		set.Candidates = append(set.Candidates, c)
	}

	return set, fwd, dropped
}

// dedupe keeps the first candidate per overload key, in classification order.
func dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]bool, len(cands))
	retained := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.OverloadKey] {
			continue
		}
		seen[c.OverloadKey] = true
		retained = append(retained, c)
	}
	return retained
}

// candidateRefs lists the user types a candidate's signature references,
// labeled with the strictest usage they impose.
func candidateRefs(node *parser.DeclNode, role Role) []typeRef {
	switch {
	case node.ParamTypes != nil:
		// Function signature: parameter and return types by value, pointer,
		// or reference all admit an incomplete type at declaration point.
		var refs []typeRef
		refs = append(refs, spellingRefs(node.TypeSpelling, false)...)
		for _, p := range node.ParamTypes {
			refs = append(refs, spellingRefs(p, false)...)
		}
		if node.TemplateHead != "" {
			refs = dropTemplateParams(refs, node.TemplateHead)
		}
		return dedupeRefs(refs)
	case role == RoleVariable:
		valueUse := !hasIndirection(node.TypeSpelling)
		return dedupeRefs(spellingRefs(node.TypeSpelling, valueUse))
	default:
		// Classes carry their full definition; nothing to forward-declare.
		return nil
	}
}

type typeRef struct {
	Name  string
	Usage string
}

func hasIndirection(spelling string) bool {
	for i := 0; i < len(spelling); i++ {
		if spelling[i] == '*' || spelling[i] == '&' {
			return true
		}
	}
	return false
}

// spellingRefs scans a type spelling for named user types. Builtins, keyword
// noise, and qualified names are skipped: a one-line forward declaration
// cannot name a type from another namespace, so qualified types are assumed
// to arrive via includes. A type applied to template arguments always
// requires its definition.
func spellingRefs(spelling string, valueUse bool) []typeRef {
	var refs []typeRef
	i := 0
	for i < len(spelling) {
		if !isIdentStart(spelling[i]) {
			i++
			continue
		}
		j := i
		qualified := false
		for j < len(spelling) {
			if isIdentChar(spelling[j]) {
				j++
				continue
			}
			if spelling[j] == ':' && j+1 < len(spelling) && spelling[j+1] == ':' {
				qualified = true
				j += 2
				continue
			}
			break
		}
		name := spelling[i:j]
		i = j

		// Peek for a template-argument list.
		k := i
		for k < len(spelling) && spelling[k] == ' ' {
			k++
		}
		templated := k < len(spelling) && spelling[k] == '<'

		if qualified || cppBuiltins[name] {
			continue
		}

		usage := usageIncompleteOK
		if valueUse || templated {
			usage = usageRequiresComplete
		}
		refs = append(refs, typeRef{Name: name, Usage: usage})
	}
	return refs
}

// dropTemplateParams removes references that name a template parameter. The
// parameter names are the identifiers of the template header; they are local
// to the candidate and never forward-declarable types.
func dropTemplateParams(refs []typeRef, templateHead string) []typeRef {
	params := make(map[string]bool)
	for _, r := range spellingRefs(templateHead, false) {
		params[r.Name] = true
	}
	out := refs[:0]
	for _, r := range refs {
		if params[r.Name] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dedupeRefs merges repeated references to a type, keeping the strictest
// usage, in first-reference order.
func dedupeRefs(refs []typeRef) []typeRef {
	var out []typeRef
	index := make(map[string]int)
	for _, r := range refs {
		if at, ok := index[r.Name]; ok {
			if r.Usage == usageRequiresComplete {
				out[at].Usage = usageRequiresComplete
			}
			continue
		}
		index[r.Name] = len(out)
		out = append(out, r)
	}
	return out
}

func sortedTypeVertices[E any](pred map[string]map[string]E) []string {
	var names []string
	for name := range pred {
		if len(name) >= 5 && name[:5] == "decl:" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// cppBuiltins are type and declaration keywords that never need a forward
// declaration.
var cppBuiltins = map[string]bool{
	"void": true, "bool": true, "char": true, "wchar_t": true,
	"char8_t": true, "char16_t": true, "char32_t": true,
	"short": true, "int": true, "long": true, "float": true, "double": true,
	"signed": true, "unsigned": true, "auto": true,
	"size_t": true, "ssize_t": true, "ptrdiff_t": true, "nullptr_t": true,
	"int8_t": true, "int16_t": true, "int32_t": true, "int64_t": true,
	"uint8_t": true, "uint16_t": true, "uint32_t": true, "uint64_t": true,
	"intptr_t": true, "uintptr_t": true,
	"const": true, "volatile": true, "constexpr": true, "mutable": true,
	"static": true, "extern": true, "inline": true, "register": true,
	"struct": true, "class": true, "enum": true, "union": true,
	"typename": true, "template": true, "operator": true,
}
