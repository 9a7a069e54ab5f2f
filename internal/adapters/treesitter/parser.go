package treesitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Syntax is the AST the frontend stores in a parsed unit.
type Syntax struct {
	Tree   *sitter.Tree
	Source []byte
}

// Root returns the root node of the tree.
func (s *Syntax) Root() *sitter.Node {
	return s.Tree.RootNode()
}

// Parse parses content with the grammar of variant and records its imports.
func (f *Frontend) Parse(path string, content []byte, variant domain.TargetVariant) (*domain.ParsedUnit, error) {
	lang, ok := grammarFor(variant)
	if !ok {
		return nil, zerr.With(zerr.With(domain.ErrUnsupportedFile, "path", path), "variant", string(variant))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "tree-sitter parse failed"), "path", path)
	}
	if tree == nil {
		return nil, zerr.With(domain.ErrParseFailed, "path", path)
	}

	root := tree.RootNode()
	scan := &importScanner{source: content}
	scan.walk(root)

	return &domain.ParsedUnit{
		Path:         path,
		Variant:      variant,
		Hash:         domain.HashContent(content),
		AST:          &Syntax{Tree: tree, Source: content},
		Imports:      scan.imports,
		SyntaxErrors: scan.errors,
	}, nil
}

// importScanner collects module specifiers and counts error nodes.
type importScanner struct {
	source  []byte
	imports []string
	errors  int
}

func (s *importScanner) walk(node *sitter.Node) {
	if node == nil {
		return
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		s.errors++
	}

	switch node.Type() {
	case "import_statement", "export_statement", "import_require_clause":
		s.addString(sourceOf(node))
	case "call_expression":
		s.scanCall(node)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		s.walk(node.Child(i))
	}
}

// scanCall records require("x") and import("x").
func (s *importScanner) scanCall(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	isRequire := fn.Type() == "identifier" && fn.Content(s.source) == "require"
	if !isRequire && fn.Type() != "import" {
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	s.addString(args.NamedChild(0))
}

func (s *importScanner) addString(node *sitter.Node) {
	if node == nil || node.Type() != "string" {
		return
	}
	specifier := unquote(node.Content(s.source))
	if specifier != "" {
		s.imports = append(s.imports, specifier)
	}
}

// sourceOf returns the module string of an import or export form.
func sourceOf(node *sitter.Node) *sitter.Node {
	if source := node.ChildByFieldName("source"); source != nil {
		return source
	}
	if node.Type() != "import_require_clause" {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil && child.Type() == "string" {
			return child
		}
	}
	return nil
}

func unquote(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'') && first == last {
			return text[1 : len(text)-1]
		}
	}
	return strings.Trim(text, `"'`)
}
