package config

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DescriptorNames are the file names searched for when a directory is given.
var DescriptorNames = []string{"tsconfig.json", "jsconfig.json", "tsconfig.yaml"}

// Descriptor is the on-disk structure of a project descriptor.
type Descriptor struct {
	Extends         Extends             `yaml:"extends"`
	Files           []string            `yaml:"files"`
	Include         []string            `yaml:"include"`
	Exclude         []string            `yaml:"exclude"`
	CompilerOptions *CompilerOptionsDTO `yaml:"compilerOptions"`
	References      []ReferenceDTO      `yaml:"references"`
}

// Extends lists the descriptors a descriptor inherits from, in application order.
// It accepts a single string or a list.
type Extends []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Extends) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		if single != "" {
			*e = Extends{single}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*e = list
		return nil
	default:
		return zerr.With(zerr.New("extends must be a string or a list"), "line", node.Line)
	}
}

// CompilerOptionsDTO holds compiler options. Unset fields are inherited from the
// extended descriptor.
type CompilerOptionsDTO struct {
	Target           *string             `yaml:"target"`
	Module           *string             `yaml:"module"`
	ModuleResolution *string             `yaml:"moduleResolution"`
	JSX              *string             `yaml:"jsx"`
	Strict           *bool               `yaml:"strict"`
	AllowJS          *bool               `yaml:"allowJs"`
	CheckJS          *bool               `yaml:"checkJs"`
	BaseURL          *string             `yaml:"baseUrl"`
	Paths            map[string][]string `yaml:"paths"`
	RootDir          *string             `yaml:"rootDir"`
	Lib              []string            `yaml:"lib"`
	Types            []string            `yaml:"types"`
	OutDir           *string             `yaml:"outDir"`
	SourceMap        *bool               `yaml:"sourceMap"`
	Declaration      *bool               `yaml:"declaration"`
	NoEmit           *bool               `yaml:"noEmit"`
}

// ReferenceDTO points at a referenced project.
type ReferenceDTO struct {
	Path string `yaml:"path"`
}
