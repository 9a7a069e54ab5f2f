package ports

import "go.trai.ch/progcache/internal/core/domain"

// ProjectResolver loads a project descriptor into root names and options.
//
//go:generate mockgen -source=project_resolver.go -destination=mocks/mock_project_resolver.go -package=mocks
type ProjectResolver interface {
	// Resolve reads the descriptor at path, following extends chains.
	Resolve(path string) (*domain.ProjectDescriptor, error)
}
