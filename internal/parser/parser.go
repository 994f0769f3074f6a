package parser

import (
	"context"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// Frontend parses C++ translation units into declaration trees.
type Frontend struct {
	language *sitter.Language
}

// NewFrontend creates a tree-sitter backed parser front-end.
func NewFrontend() *Frontend {
	return &Frontend{
		language: sitter.NewLanguage(cpp.Language()),
	}
}

// Parse reads the source file at path and produces its declaration tree.
// Compilation flags are accepted for interface parity with the preprocessor
// stage; tree-sitter does not consume them.
func (f *Frontend) Parse(ctx context.Context, path string, flags []string) (*Tree, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(f.language)

	cst := parser.Parse(source, nil)
	if cst == nil {
		return nil, &ParseError{Path: path, Reason: "tree-sitter produced no syntax tree"}
	}
	defer cst.Close()

	root := cst.RootNode()
	if root == nil || root.Kind() != "translation_unit" {
		return nil, &ParseError{Path: path, Reason: "no translation unit found"}
	}

	tree := &Tree{
		Path:  path,
		Lines: strings.Split(string(source), "\n"),
	}

	b := &builder{source: source, tree: tree, path: path}
	tree.Root = b.addNode(DeclNode{
		Kind:         KindNamespace,
		Parent:       -1,
		IsDefinition: true,
		Extent:       b.extent(root),
	})
	b.buildScope(root, tree.Root, nil)

	return tree, nil
}

// builder turns the tree-sitter CST into the arena-backed declaration tree.
type builder struct {
	source []byte
	tree   *Tree
	path   string
}

func (b *builder) addNode(n DeclNode) int {
	b.tree.Nodes = append(b.tree.Nodes, n)
	idx := len(b.tree.Nodes) - 1
	if n.Parent >= 0 {
		parent := &b.tree.Nodes[n.Parent]
		parent.Children = append(parent.Children, idx)
	}
	return idx
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(b.source[n.StartByte():n.EndByte()])
}

func (b *builder) extent(n *sitter.Node) Extent {
	return Extent{
		File:      b.path,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}
}

// buildScope walks the children of a scope-introducing CST node (translation
// unit, namespace body, class body) and registers the declarations it finds.
func (b *builder) buildScope(node *sitter.Node, parent int, scope []string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		b.buildDecl(child, parent, scope)
	}
}

// buildDecl registers a single declaration. Unmodeled node kinds are skipped.
func (b *builder) buildDecl(node *sitter.Node, parent int, scope []string) {
	switch node.Kind() {
	case "namespace_definition":
		b.buildNamespace(node, parent, scope)
	case "template_declaration":
		b.buildTemplate(node, parent, scope)
	case "function_definition":
		b.buildFunction(node, parent, scope, true, "")
	case "declaration", "field_declaration":
		b.buildDeclaration(node, parent, scope)
	case "class_specifier", "struct_specifier":
		b.buildClass(node, parent, scope, "")
	}
}

func (b *builder) buildNamespace(node *sitter.Node, parent int, scope []string) {
	name := b.text(node.ChildByFieldName("name"))

	idx := b.addNode(DeclNode{
		Kind:          KindNamespace,
		Name:          name,
		QualifiedName: qualify(scope, name),
		Extent:        b.extent(node),
		IsDefinition:  true,
		Parent:        parent,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	inner := scope
	if name != "" {
		inner = append(append([]string{}, scope...), name)
	}
	b.buildScope(body, idx, inner)
}

// buildTemplate captures a template_declaration as a single unit. The
// template header travels with whatever declaration the template wraps.
func (b *builder) buildTemplate(node *sitter.Node, parent int, scope []string) {
	head := ""
	if params := node.ChildByFieldName("parameters"); params != nil {
		head = normalizeSpaces(string(b.source[node.StartByte():params.EndByte()]))
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			idx := b.buildFunction(child, parent, scope, true, head)
			b.retag(idx, node)
			return
		case "class_specifier", "struct_specifier":
			idx := b.buildClass(child, parent, scope, head)
			b.retag(idx, node)
			return
		case "declaration":
			// Template forward declaration or prototype.
			if fn := findFunctionDeclarator(child); fn != nil {
				idx := b.buildFunction(child, parent, scope, false, head)
				b.retag(idx, node)
				return
			}
			if spec := findChildOfKinds(child, "class_specifier", "struct_specifier"); spec != nil {
				idx := b.buildClass(spec, parent, scope, head)
				b.retag(idx, node)
				return
			}
		}
	}
}

// retag widens a node's extent to cover the enclosing template declaration
// and flips its kind to template.
func (b *builder) retag(idx int, template *sitter.Node) {
	if idx < 0 {
		return
	}
	n := &b.tree.Nodes[idx]
	n.Kind = KindTemplate
	n.Extent = b.extent(template)
}

func (b *builder) buildFunction(node *sitter.Node, parent int, scope []string, definition bool, head string) int {
	declarator := node.ChildByFieldName("declarator")
	fn := findFunctionDeclaratorFrom(declarator)
	if fn == nil {
		fn = findFunctionDeclarator(node)
	}
	if fn == nil {
		return -1
	}

	nameNode := fn.ChildByFieldName("declarator")
	name, qualifier := declaredName(nameNode, b.source)
	if name == "" {
		return -1
	}

	qualified := qualify(scope, name)
	if qualifier != "" {
		qualified = qualify(scope, qualifier+"::"+name)
	}

	params := b.paramSpellings(fn)
	if params == nil {
		params = []string{}
	}

	return b.addNode(DeclNode{
		Kind:          KindFunction,
		Name:          name,
		QualifiedName: qualified,
		TypeSpelling:  b.returnSpelling(node, fn),
		ParamTypes:    params,
		TemplateHead:  head,
		Extent:        b.extent(node),
		IsDefinition:  definition,
		Parent:        parent,
	})
}

func (b *builder) buildClass(node *sitter.Node, parent int, scope []string, head string) int {
	name := b.text(node.ChildByFieldName("name"))
	if name == "" {
		return -1
	}
	body := node.ChildByFieldName("body")

	idx := b.addNode(DeclNode{
		Kind:          KindClass,
		Name:          name,
		QualifiedName: qualify(scope, name),
		TemplateHead:  head,
		Extent:        b.extent(node),
		IsDefinition:  body != nil,
		Parent:        parent,
	})

	if body != nil {
		inner := append(append([]string{}, scope...), name)
		b.buildScope(body, idx, inner)
	}
	return idx
}

// buildDeclaration handles declaration/field_declaration nodes: function
// prototypes, variables, and class definitions wrapped in a declaration.
func (b *builder) buildDeclaration(node *sitter.Node, parent int, scope []string) {
	if spec := findChildOfKinds(node, "class_specifier", "struct_specifier"); spec != nil {
		if spec.ChildByFieldName("body") != nil || !hasDeclarator(node) {
			b.buildClass(spec, parent, scope, "")
			return
		}
	}

	if fn := findFunctionDeclarator(node); fn != nil {
		b.buildFunction(node, parent, scope, false, "")
		return
	}

	b.buildVariables(node, parent, scope)
}

func (b *builder) buildVariables(node *sitter.Node, parent int, scope []string) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	baseType := b.text(typeNode)
	if hasStorageClass(node, b.source, "const") {
		baseType = "const " + baseType
	}
	isExtern := hasStorageClass(node, b.source, "extern")
	isStatic := hasStorageClass(node, b.source, "static")

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "init_declarator", "identifier", "field_identifier",
			"pointer_declarator", "reference_declarator", "array_declarator",
			"qualified_identifier":
			name, qualifier, spelling, suffix := b.variableDeclarator(child, baseType)
			if name == "" {
				continue
			}
			qualified := qualify(scope, name)
			if qualifier != "" {
				qualified = qualify(scope, qualifier+"::"+name)
			}
			b.addNode(DeclNode{
				Kind:          KindVariable,
				Name:          name,
				QualifiedName: qualified,
				TypeSpelling:  spelling,
				TypeSuffix:    suffix,
				Extent:        b.extent(node),
				IsDefinition:  !isExtern,
				IsStatic:      isStatic,
				Parent:        parent,
			})
		}
	}
}

// variableDeclarator resolves one declarator to its name, scope qualifier,
// full type spelling (base type plus pointer/reference decoration), and the
// array suffix trailing the declared name.
func (b *builder) variableDeclarator(node *sitter.Node, baseType string) (name, qualifier, spelling, suffix string) {
	spelling = baseType
	current := node
	for current != nil {
		switch current.Kind() {
		case "init_declarator":
			current = current.ChildByFieldName("declarator")
		case "pointer_declarator":
			spelling += "*"
			current = current.ChildByFieldName("declarator")
		case "reference_declarator":
			spelling += "&"
			current = declaratorChild(current)
		case "array_declarator":
			inner := current.ChildByFieldName("declarator")
			if inner == nil {
				return "", "", spelling, suffix
			}
			// Nested array declarators wrap outermost-extent-last, so each
			// inner extent prepends.
			suffix = normalizeSpaces(string(b.source[inner.EndByte():current.EndByte()])) + suffix
			current = inner
		case "identifier", "field_identifier":
			return b.text(current), "", spelling, suffix
		case "qualified_identifier":
			n, q := declaredName(current, b.source)
			return n, q, spelling, suffix
		default:
			return "", "", spelling, suffix
		}
	}
	return "", "", spelling, suffix
}

// returnSpelling derives a function's return type, including pointer or
// reference declarator wrappers above the function declarator.
func (b *builder) returnSpelling(node *sitter.Node, fn *sitter.Node) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	spelling := b.text(typeNode)
	if hasStorageClass(node, b.source, "const") {
		spelling = "const " + spelling
	}

	current := node.ChildByFieldName("declarator")
	for current != nil && current.StartByte() != fn.StartByte() {
		switch current.Kind() {
		case "pointer_declarator":
			spelling += "*"
			current = current.ChildByFieldName("declarator")
		case "reference_declarator":
			spelling += "&"
			current = declaratorChild(current)
		default:
			current = nil
		}
	}
	return spelling
}

// paramSpellings extracts ordered parameter type spellings with the declared
// parameter names stripped.
func (b *builder) paramSpellings(fn *sitter.Node) []string {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var spellings []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
			spellings = append(spellings, b.paramSpelling(child))
		case "variadic_parameter_declaration":
			spellings = append(spellings, "...")
		}
	}
	return spellings
}

func (b *builder) paramSpelling(param *sitter.Node) string {
	raw := b.text(param)

	// Drop a default argument, if any.
	if value := param.ChildByFieldName("default_value"); value != nil {
		raw = string(b.source[param.StartByte():value.StartByte()])
		raw = strings.TrimRight(strings.TrimSpace(raw), "=")
	}

	// Strip the declared parameter name by blanking its byte range.
	if nameNode := innermostIdentifier(param.ChildByFieldName("declarator")); nameNode != nil {
		start := int(nameNode.StartByte()) - int(param.StartByte())
		end := int(nameNode.EndByte()) - int(param.StartByte())
		if start >= 0 && end <= len(raw) {
			raw = raw[:start] + raw[end:]
		}
	}

	return normalizeSpaces(raw)
}

// declaredName resolves a declarator name node to its unqualified name and,
// for out-of-class definitions like Foo::bar, the scope qualifier.
func declaredName(node *sitter.Node, source []byte) (name, qualifier string) {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			return string(source[node.StartByte():node.EndByte()]), qualifier
		case "qualified_identifier":
			if scopeNode := node.ChildByFieldName("scope"); scopeNode != nil {
				q := string(source[scopeNode.StartByte():scopeNode.EndByte()])
				if qualifier != "" {
					qualifier += "::"
				}
				qualifier += q
			}
			node = node.ChildByFieldName("name")
		case "pointer_declarator", "function_declarator":
			node = node.ChildByFieldName("declarator")
		case "reference_declarator":
			node = declaratorChild(node)
		default:
			return "", qualifier
		}
	}
	return "", qualifier
}

// innermostIdentifier finds the declared-name leaf of a declarator chain.
func innermostIdentifier(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return node
		case "pointer_declarator", "function_declarator", "array_declarator", "init_declarator":
			node = node.ChildByFieldName("declarator")
		case "reference_declarator":
			node = declaratorChild(node)
		default:
			return nil
		}
	}
	return nil
}

// declaratorChild returns the first named child of a declarator wrapper that
// has no declarator field (reference_declarator in the cpp grammar).
func declaratorChild(node *sitter.Node) *sitter.Node {
	if d := node.ChildByFieldName("declarator"); d != nil {
		return d
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child != nil && child.IsNamed() {
			return child
		}
	}
	return nil
}

// findFunctionDeclarator locates a function_declarator anywhere under the
// node's declarator chain.
func findFunctionDeclarator(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_declarator":
			return child
		case "pointer_declarator", "reference_declarator", "init_declarator":
			if fn := findFunctionDeclarator(child); fn != nil {
				return fn
			}
		}
	}
	return nil
}

func findFunctionDeclaratorFrom(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == "function_declarator" {
		return node
	}
	return findFunctionDeclarator(node)
}

func findChildOfKinds(node *sitter.Node, kinds ...string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}

func hasDeclarator(node *sitter.Node) bool {
	if node.ChildByFieldName("declarator") != nil {
		return true
	}
	return findChildOfKinds(node, "init_declarator", "identifier", "pointer_declarator") != nil
}

func hasStorageClass(node *sitter.Node, source []byte, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind == "storage_class_specifier" || kind == "type_qualifier" {
			if string(source[child.StartByte():child.EndByte()]) == keyword {
				return true
			}
		}
	}
	return false
}

func qualify(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, "::") + "::" + name
}

// normalizeSpaces collapses whitespace runs and tightens pointer/reference
// punctuation so spellings compare deterministically.
func normalizeSpaces(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " *", "*")
	s = strings.ReplaceAll(s, " &", "&")
	s = strings.ReplaceAll(s, "< ", "<")
	s = strings.ReplaceAll(s, " >", ">")
	return strings.TrimSpace(s)
}
