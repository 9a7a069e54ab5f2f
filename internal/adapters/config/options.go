package config

import "go.trai.ch/progcache/internal/core/domain"

// overlay copies every field set in src onto o.
func (o *CompilerOptionsDTO) overlay(src *CompilerOptionsDTO) {
	setIf(&o.Target, src.Target)
	setIf(&o.Module, src.Module)
	setIf(&o.ModuleResolution, src.ModuleResolution)
	setIf(&o.JSX, src.JSX)
	setIf(&o.Strict, src.Strict)
	setIf(&o.AllowJS, src.AllowJS)
	setIf(&o.CheckJS, src.CheckJS)
	setIf(&o.BaseURL, src.BaseURL)
	setIf(&o.RootDir, src.RootDir)
	setIf(&o.OutDir, src.OutDir)
	setIf(&o.SourceMap, src.SourceMap)
	setIf(&o.Declaration, src.Declaration)
	setIf(&o.NoEmit, src.NoEmit)
	if src.Paths != nil {
		o.Paths = src.Paths
	}
	if src.Lib != nil {
		o.Lib = src.Lib
	}
	if src.Types != nil {
		o.Types = src.Types
	}
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func valueOf[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// toDomain converts the merged options. Validation happens when the options are normalized.
func (o *CompilerOptionsDTO) toDomain() *domain.ProjectOptions {
	return &domain.ProjectOptions{
		Target:           valueOf(o.Target),
		Module:           valueOf(o.Module),
		ModuleResolution: valueOf(o.ModuleResolution),
		JSX:              valueOf(o.JSX),
		Strict:           valueOf(o.Strict),
		AllowJS:          valueOf(o.AllowJS),
		CheckJS:          valueOf(o.CheckJS),
		BaseURL:          valueOf(o.BaseURL),
		Paths:            o.Paths,
		RootDir:          valueOf(o.RootDir),
		Lib:              o.Lib,
		Types:            o.Types,
		OutDir:           valueOf(o.OutDir),
		SourceMap:        valueOf(o.SourceMap),
		Declaration:      valueOf(o.Declaration),
		NoEmit:           valueOf(o.NoEmit),
	}
}
