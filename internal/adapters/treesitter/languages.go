// Package treesitter is the compiler frontend: it parses TypeScript and
// JavaScript with tree-sitter, discovers imports and builds programs over the
// resolved dependency closure.
package treesitter

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.trai.ch/progcache/internal/core/domain"
)

var (
	grammars     map[domain.TargetVariant]*sitter.Language
	grammarsOnce sync.Once
)

func grammarFor(variant domain.TargetVariant) (*sitter.Language, bool) {
	grammarsOnce.Do(func() {
		grammars = map[domain.TargetVariant]*sitter.Language{
			domain.VariantTypeScript: ts.GetLanguage(),
			domain.VariantTSX:        tsx.GetLanguage(),
			domain.VariantJavaScript: javascript.GetLanguage(),
		}
	})
	lang, ok := grammars[variant]
	return lang, ok
}

// variantForFile maps a file to its variant. JavaScript files need allowJs.
func variantForFile(path string, allowJS bool) (domain.TargetVariant, bool) {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".d.ts") {
		return domain.VariantTypeScript, true
	}

	switch filepath.Ext(name) {
	case ".ts", ".mts", ".cts":
		return domain.VariantTypeScript, true
	case ".tsx":
		return domain.VariantTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		if allowJS {
			return domain.VariantJavaScript, true
		}
	}
	return "", false
}

// resolutionExtensions are tried in order when a specifier has no usable extension.
func resolutionExtensions(allowJS bool) []string {
	exts := []string{".ts", ".tsx", ".d.ts", ".mts", ".cts"}
	if allowJS {
		exts = append(exts, ".js", ".jsx", ".mjs", ".cjs")
	}
	return exts
}
