package ports

// ProgramDiagnostics is implemented by programs that report analysis findings.
type ProgramDiagnostics interface {
	// Unresolved returns the import specifiers of path that matched no file.
	Unresolved(path string) []string
	// Reused returns how many units were taken over from the baseline program.
	Reused() int
}
