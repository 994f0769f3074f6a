package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

func TestResolveScopes_NestedPath(t *testing.T) {
	t.Parallel()

	tree := newTestTree("namespace geo { namespace detail { int scale; } }")
	geo := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "geo", QualifiedName: "geo",
		IsDefinition: true, Parent: tree.Root,
	})
	detail := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "detail", QualifiedName: "geo::detail",
		IsDefinition: true, Parent: geo,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "scale", QualifiedName: "geo::detail::scale",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: detail,
	})

	cands := ResolveScopes(tree, Classify(tree))
	require.Len(t, cands, 1)
	require.NoError(t, cands[0].Err)
	assert.Equal(t, []string{"geo", "detail"}, cands[0].ScopePath)
}

func TestResolveScopes_IdenticalSpellingDifferentScope(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int bar;")
	foo := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "Foo", QualifiedName: "Foo",
		IsDefinition: true, Parent: tree.Root,
	})
	baz := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "Baz", QualifiedName: "Baz",
		IsDefinition: true, Parent: tree.Root,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "bar", QualifiedName: "Foo::bar",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: foo,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "bar", QualifiedName: "Baz::bar",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: baz,
	})

	cands := ResolveScopes(tree, Classify(tree))
	require.Len(t, cands, 2)
	assert.NotEqual(t, cands[0].ScopePath, cands[1].ScopePath)
	assert.NotEqual(t, cands[0].OverloadKey, cands[1].OverloadKey)
}

func TestResolveScopes_BrokenReference(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int orphan;")
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "orphan", QualifiedName: "orphan",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: tree.Root,
	})
	// Corrupt the parent link after classification would have accepted it.
	cands := Classify(tree)
	require.Len(t, cands, 1)
	tree.Nodes[cands[0].Node].Parent = 99

	cands = ResolveScopes(tree, cands)
	require.Error(t, cands[0].Err)

	var scopeErr *ScopeResolutionError
	assert.True(t, errors.As(cands[0].Err, &scopeErr))
	assert.Equal(t, "orphan", scopeErr.QualifiedName)
}

func TestResolveScopes_CyclicReference(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int looped;")
	a := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "a", QualifiedName: "a",
		IsDefinition: true, Parent: tree.Root,
	})
	b := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindNamespace, Name: "b", QualifiedName: "a::b",
		IsDefinition: true, Parent: a,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "looped", QualifiedName: "a::b::looped",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: b,
	})
	cands := Classify(tree)
	require.Len(t, cands, 1)

	// Introduce a cycle: a's parent points back down to b.
	tree.Nodes[a].Parent = b

	cands = ResolveScopes(tree, cands)
	require.Error(t, cands[0].Err)

	var scopeErr *ScopeResolutionError
	require.True(t, errors.As(cands[0].Err, &scopeErr))
	assert.Contains(t, scopeErr.Reason, "cyclic")
}
