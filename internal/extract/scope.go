package extract

import (
	"github.com/mvp-joe/cpp-split/internal/parser"
)

// ResolveScopes computes each candidate's ScopePath by walking the arena
// parent indices back to the root. Two declarations with identical spelling
// but different scope chains never collide: the scope path participates in
// the candidate's identity downstream.
//
// A broken or cyclic back-reference yields a ScopeResolutionError recorded on
// the candidate; the run continues without it.
func ResolveScopes(tree *parser.Tree, cands []Candidate) []Candidate {
	for i := range cands {
		if cands[i].Err != nil {
			continue
		}
		path, err := scopePath(tree, cands[i].Node, cands[i].QualifiedName)
		if err != nil {
			cands[i].Err = err
			continue
		}
		cands[i].ScopePath = path
	}
	return cands
}

func scopePath(tree *parser.Tree, idx int, qname string) ([]string, error) {
	node := tree.Node(idx)
	if node == nil {
		return nil, &ScopeResolutionError{QualifiedName: qname, Reason: "candidate references no tree node"}
	}

	var reversed []string
	seen := map[int]bool{idx: true}

	parent := node.Parent
	for parent >= 0 {
		if seen[parent] {
			return nil, &ScopeResolutionError{
				QualifiedName: node.QualifiedName,
				Reason:        "cyclic enclosing-scope chain",
			}
		}
		seen[parent] = true

		p := tree.Node(parent)
		if p == nil {
			return nil, &ScopeResolutionError{
				QualifiedName: node.QualifiedName,
				Reason:        "broken enclosing-scope reference",
			}
		}
		if p.Name != "" {
			reversed = append(reversed, p.Name)
		}
		parent = p.Parent
	}

	// Reverse into outermost-first order.
	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path, nil
}
