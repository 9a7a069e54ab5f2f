package treesitter

import (
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
)

var (
	_ ports.Program            = (*Program)(nil)
	_ ports.ProgramDiagnostics = (*Program)(nil)
)

// Program is the set of files reachable from the roots through resolved imports.
type Program struct {
	options    *domain.ProjectOptions
	roots      []string
	files      []string
	units      map[string]*domain.ParsedUnit
	deps       map[string][]string
	unresolved map[string][]string
	external   map[string][]string
	reused     int
}

// RootNames returns the roots in request order.
func (p *Program) RootNames() []string {
	return p.roots
}

// SourceFiles returns every discovered file in discovery order, roots first.
func (p *Program) SourceFiles() []string {
	return p.files
}

// SourceFile returns the unit of a discovered file.
func (p *Program) SourceFile(path string) (*domain.ParsedUnit, bool) {
	unit, ok := p.units[path]
	return unit, ok
}

// Options returns the options the program was built under.
func (p *Program) Options() *domain.ProjectOptions {
	return p.options
}

// Dependencies returns the files path imports.
func (p *Program) Dependencies(path string) []string {
	return p.deps[path]
}

// Unresolved returns the relative specifiers of path that named no file.
func (p *Program) Unresolved(path string) []string {
	return p.unresolved[path]
}

// UnresolvedCount returns the number of unresolved relative specifiers across all files.
func (p *Program) UnresolvedCount() int {
	n := 0
	for _, specifiers := range p.unresolved {
		n += len(specifiers)
	}
	return n
}

// External returns the bare specifiers of path left to the package manager.
func (p *Program) External(path string) []string {
	return p.external[path]
}

// SyntaxErrors returns the number of recovered syntax errors across all files.
func (p *Program) SyntaxErrors() int {
	n := 0
	for _, unit := range p.units {
		n += unit.SyntaxErrors
	}
	return n
}

// Reused returns how many units were taken over from the baseline program.
func (p *Program) Reused() int {
	return p.reused
}
