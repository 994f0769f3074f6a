package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cpp-split/internal/parser"
)

// Test Plan for the classifier:
// - Function definitions qualify, prototypes do not
// - File-scope variables qualify, extern declarations and class members do not
// - Classes qualify only as definitions and are captured whole
// - Classification order follows the pre-order arena walk

// newTestTree builds an arena tree the way the front-end does, rooted at a
// global namespace node.
func newTestTree(lines ...string) *parser.Tree {
	tree := &parser.Tree{Path: "test.cpp", Lines: lines}
	tree.Root = addTestNode(tree, parser.DeclNode{
		Kind:         parser.KindNamespace,
		Parent:       -1,
		IsDefinition: true,
	})
	return tree
}

func addTestNode(tree *parser.Tree, n parser.DeclNode) int {
	tree.Nodes = append(tree.Nodes, n)
	idx := len(tree.Nodes) - 1
	if n.Parent >= 0 && n.Parent < len(tree.Nodes) {
		parent := &tree.Nodes[n.Parent]
		parent.Children = append(parent.Children, idx)
	}
	return idx
}

func TestClassify_FunctionDefinitionsOnly(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int f(int);", "int f(int x) { return x; }")
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindFunction, Name: "f", QualifiedName: "f",
		TypeSpelling: "int", ParamTypes: []string{"int"},
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: tree.Root,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindFunction, Name: "f", QualifiedName: "f",
		TypeSpelling: "int", ParamTypes: []string{"int"},
		Extent:       parser.Extent{File: "test.cpp", StartLine: 2, EndLine: 2},
		IsDefinition: true,
		Parent:       tree.Root,
	})

	cands := Classify(tree)
	require.Len(t, cands, 1, "the prototype must not be classified")
	assert.Equal(t, 2, cands[0].Node)
	assert.Equal(t, RoleFunction, cands[0].Role)
}

func TestClassify_VariablesAndMembers(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int counter;", "extern int other;", "class C { int member_; };")
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "counter", QualifiedName: "counter",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent: tree.Root,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "other", QualifiedName: "other",
		TypeSpelling: "int", IsDefinition: false,
		Extent: parser.Extent{File: "test.cpp", StartLine: 2, EndLine: 2},
		Parent: tree.Root,
	})
	class := addTestNode(tree, parser.DeclNode{
		Kind: parser.KindClass, Name: "C", QualifiedName: "C",
		IsDefinition: true,
		Extent:       parser.Extent{File: "test.cpp", StartLine: 3, EndLine: 3},
		Parent:       tree.Root,
	})
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindVariable, Name: "member_", QualifiedName: "C::member_",
		TypeSpelling: "int", IsDefinition: true,
		Extent: parser.Extent{File: "test.cpp", StartLine: 3, EndLine: 3},
		Parent: class,
	})

	cands := Classify(tree)
	require.Len(t, cands, 2)
	assert.Equal(t, "counter", cands[0].QualifiedName)
	assert.Equal(t, RoleVariable, cands[0].Role)
	assert.Equal(t, "C", cands[1].QualifiedName)
	assert.Equal(t, RoleClass, cands[1].Role)
}

func TestClassify_ForwardClassDeclarationExcluded(t *testing.T) {
	t.Parallel()

	tree := newTestTree("class Fwd;")
	addTestNode(tree, parser.DeclNode{
		Kind: parser.KindClass, Name: "Fwd", QualifiedName: "Fwd",
		IsDefinition: false,
		Extent:       parser.Extent{File: "test.cpp", StartLine: 1, EndLine: 1},
		Parent:       tree.Root,
	})

	assert.Empty(t, Classify(tree))
}

func TestClassify_PreOrderDeterministic(t *testing.T) {
	t.Parallel()

	tree := newTestTree("int a;", "int b;", "int c;")
	for i, name := range []string{"a", "b", "c"} {
		addTestNode(tree, parser.DeclNode{
			Kind: parser.KindVariable, Name: name, QualifiedName: name,
			TypeSpelling: "int", IsDefinition: true,
			Extent: parser.Extent{File: "test.cpp", StartLine: i + 1, EndLine: i + 1},
			Parent: tree.Root,
		})
	}

	first := Classify(tree)
	second := Classify(tree)
	require.Equal(t, first, second)

	var names []string
	for _, c := range first {
		names = append(names, c.QualifiedName)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestOverloadKey_ReturnTypeIgnored(t *testing.T) {
	t.Parallel()

	a := &parser.DeclNode{QualifiedName: "f", TypeSpelling: "int", ParamTypes: []string{"int"}}
	b := &parser.DeclNode{QualifiedName: "f", TypeSpelling: "long", ParamTypes: []string{"int"}}
	c := &parser.DeclNode{QualifiedName: "f", TypeSpelling: "int", ParamTypes: []string{"double"}}

	assert.Equal(t, overloadKey(a), overloadKey(b), "return type must not distinguish overloads")
	assert.NotEqual(t, overloadKey(a), overloadKey(c))
}
