package domain

import "go.trai.ch/zerr"

var (
	// ErrProjectConfig is returned when project options or a project descriptor are malformed or invalid.
	ErrProjectConfig = zerr.New("invalid project configuration")

	// ErrBuildFailed is returned when the compiler frontend fails to build or rebuild a program.
	ErrBuildFailed = zerr.New("program build failed")

	// ErrSourceNotFound is returned when a requested source file does not exist.
	ErrSourceNotFound = zerr.New("source file not found")

	// ErrUnsupportedFile is returned when no parser dialect can handle a file.
	ErrUnsupportedFile = zerr.New("unsupported source file")

	// ErrParseFailed is returned when the parser aborts on a file.
	ErrParseFailed = zerr.New("failed to parse source file")

	// ErrNoRootFiles is returned when a build is requested without any root file.
	ErrNoRootFiles = zerr.New("no root files specified")

	// ErrConfigReadFailed is returned when the project descriptor cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read project descriptor")

	// ErrConfigParseFailed is returned when the project descriptor cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse project descriptor")

	// ErrConfigCycle is returned when project descriptors extend each other in a cycle.
	ErrConfigCycle = zerr.New("project descriptor extends itself")

	// ErrInvalidTarget is returned when the compiler target is not recognized.
	ErrInvalidTarget = zerr.New("invalid compiler target")

	// ErrInvalidModuleResolution is returned when the module resolution strategy is not recognized.
	ErrInvalidModuleResolution = zerr.New("invalid module resolution strategy")

	// ErrInvalidJSX is returned when the jsx mode is not recognized.
	ErrInvalidJSX = zerr.New("invalid jsx mode")

	// ErrInvalidPathMapping is returned when a paths mapping has more than one wildcard or no substitutions.
	ErrInvalidPathMapping = zerr.New("invalid paths mapping")

	// ErrNoFilesToAnalyze is returned when the analyze command resolves no input files.
	ErrNoFilesToAnalyze = zerr.New("no files to analyze")

	// ErrPoolClosed is returned when a request is submitted to a stopped worker pool.
	ErrPoolClosed = zerr.New("worker pool is not running")
)
