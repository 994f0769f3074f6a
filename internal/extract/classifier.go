package extract

import (
	"strings"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// Classify walks the declaration tree pre-order, left to right, and selects
// the nodes that are genuine extraction candidates. The walk order defines
// the output ordering guarantee: downstream stages never reorder candidates.
//
// Selection rules:
//   - functions only when they are definitions; prototypes are re-derived
//     from the extracted definitions later, never duplicated
//   - variables only at file or namespace scope; anything inside a function
//     body or captured by an owning class is rejected
//   - classes and templates only when definitions, captured whole
//
// Non-candidate node kinds are skipped silently.
func Classify(tree *parser.Tree) []Candidate {
	var cands []Candidate
	classifyNode(tree, tree.Root, &cands)
	return cands
}

func classifyNode(tree *parser.Tree, idx int, cands *[]Candidate) {
	node := tree.Node(idx)
	if node == nil {
		return
	}

	switch node.Kind {
	case parser.KindNamespace:
		for _, child := range node.Children {
			classifyNode(tree, child, cands)
		}

	case parser.KindFunction:
		if node.IsDefinition && !insideFunctionOrClass(tree, node) {
			*cands = append(*cands, newCandidate(tree, idx, RoleFunction))
		}

	case parser.KindVariable:
		if node.IsDefinition && !insideFunctionOrClass(tree, node) {
			*cands = append(*cands, newCandidate(tree, idx, RoleVariable))
		}

	case parser.KindClass:
		if node.IsDefinition && !insideFunctionOrClass(tree, node) {
			*cands = append(*cands, newCandidate(tree, idx, RoleClass))
		}
		// Members travel with the class capture, but the children are still
		// visited: a nested scope can re-export an independent candidate.
		for _, child := range node.Children {
			classifyNode(tree, child, cands)
		}

	case parser.KindTemplate:
		if node.IsDefinition && !insideFunctionOrClass(tree, node) {
			*cands = append(*cands, newCandidate(tree, idx, RoleTemplate))
		}
		for _, child := range node.Children {
			classifyNode(tree, child, cands)
		}
	}
}

func newCandidate(tree *parser.Tree, idx int, role Role) Candidate {
	node := tree.Node(idx)
	return Candidate{
		Node:          idx,
		Role:          role,
		QualifiedName: node.QualifiedName,
		OverloadKey:   overloadKey(node),
	}
}

// insideFunctionOrClass walks the parent chain and reports whether the node
// is owned by a function body or a class capture. This is the guard that
// keeps locals and ordinary members out of the top-level extraction set.
func insideFunctionOrClass(tree *parser.Tree, node *parser.DeclNode) bool {
	parent := node.Parent
	for steps := 0; parent >= 0 && steps <= len(tree.Nodes); steps++ {
		p := tree.Node(parent)
		if p == nil {
			return false
		}
		switch p.Kind {
		case parser.KindFunction, parser.KindClass, parser.KindTemplate:
			return true
		}
		parent = p.Parent
	}
	return false
}

// overloadKey builds the deduplication key: qualified name plus the ordered
// parameter type spellings. Return types never participate, matching C++
// overload resolution.
func overloadKey(node *parser.DeclNode) string {
	if node.ParamTypes == nil {
		return node.QualifiedName
	}
	return node.QualifiedName + "(" + strings.Join(node.ParamTypes, ",") + ")"
}
