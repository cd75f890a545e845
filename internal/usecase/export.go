package usecase

import (
	"tagscope/internal/domain"
)

// Export is the produced-index view handed to tools: file list, import
// graph, tag table with resolved references, and containment.
type Export struct {
	Files      []string               `json:"files"`
	Imports    map[string][]string    `json:"imports"`
	Tags       map[string][]ExportTag `json:"tags"`
	Children   []domain.Containment   `json:"children"`
	Unresolved []ExportUnresolved     `json:"unresolved"`
}

type ExportTag struct {
	Kind domain.TagKind `json:"kind"`
	Name string         `json:"name"`
	Refs []ExportRef    `json:"refs"`
}

// ExportRef is one of {file, tag}, {primitive, name} or {unresolved}.
type ExportRef struct {
	File       *int   `json:"file,omitempty"`
	Tag        *int   `json:"tag,omitempty"`
	Primitive  *int   `json:"primitive,omitempty"`
	Name       string `json:"name,omitempty"`
	Unresolved string `json:"unresolved,omitempty"`
}

// ExportUnresolved names a reference no build could bind. Lambda is set
// instead of Tag for references in a lambda's captures or parameters.
type ExportUnresolved struct {
	File   string `json:"file"`
	Tag    *int   `json:"tag,omitempty"`
	Lambda *int   `json:"lambda,omitempty"`
	Name   string `json:"name"`
}

func exportRef(r domain.TypeRef) ExportRef {
	switch r.State {
	case domain.ResolvedDefinition:
		file, tag := r.File, r.Tag
		return ExportRef{File: &file, Tag: &tag}
	case domain.ResolvedPrimitive:
		prim := r.Primitive
		return ExportRef{Primitive: &prim, Name: r.Name}
	default:
		return ExportRef{Unresolved: r.Name}
	}
}

// ExportIndex builds the export view of idx.
func ExportIndex(idx *domain.ProjectIndex) Export {
	out := Export{
		Files:      append([]string{}, idx.Files...),
		Imports:    make(map[string][]string, len(idx.Files)),
		Tags:       make(map[string][]ExportTag, len(idx.Files)),
		Children:   append([]domain.Containment{}, idx.Children...),
		Unresolved: []ExportUnresolved{},
	}

	for i, file := range idx.Files {
		targets := []string{}
		for _, t := range idx.ImportedFiles(i) {
			targets = append(targets, idx.Files[t])
		}
		out.Imports[file] = targets

		if i >= len(idx.Analyses) {
			out.Tags[file] = []ExportTag{}
			continue
		}
		fa := idx.Analyses[i]
		tags := make([]ExportTag, 0, len(fa.Tags))
		for t, tag := range fa.Tags {
			refs := []ExportRef{}
			for _, r := range tag.Refs() {
				if r.Name == "" {
					continue
				}
				refs = append(refs, exportRef(r))
				if !r.IsResolved() {
					n := t
					out.Unresolved = append(out.Unresolved, ExportUnresolved{File: file, Tag: &n, Name: r.Name})
				}
			}
			tags = append(tags, ExportTag{Kind: tag.Kind, Name: tag.Name, Refs: refs})
		}
		out.Tags[file] = tags

		for l, lambda := range fa.Lambdas {
			for _, p := range append(append([]domain.Param{}, lambda.Captures...), lambda.Params...) {
				if p.Type.Name == "" || p.Type.IsResolved() {
					continue
				}
				n := l
				out.Unresolved = append(out.Unresolved, ExportUnresolved{File: file, Lambda: &n, Name: p.Type.Name})
			}
		}
	}
	return out
}
