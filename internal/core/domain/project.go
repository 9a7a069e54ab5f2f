package domain

import "path/filepath"

// ProjectReference points at another project descriptor the project depends on.
type ProjectReference struct {
	// Path is the absolute path of the referenced descriptor.
	Path string
}

// ProjectDescriptor is a resolved project configuration.
type ProjectDescriptor struct {
	// ConfigPath is the absolute path of the descriptor file.
	ConfigPath string
	// RootNames are the absolute root files selected by files/include/exclude.
	RootNames []string
	// Options are the merged compiler options, not yet normalized.
	Options *ProjectOptions
	// References lists referenced sub-projects.
	References []ProjectReference
}

// Dir returns the directory the descriptor lives in.
func (p *ProjectDescriptor) Dir() string {
	return filepath.Dir(p.ConfigPath)
}
