// Package graph links the per-file tag tables of a project into one symbol
// graph: class containment, accessible scopes and type resolution.
package graph

import (
	"log/slog"

	"tagscope/internal/adapter/lang"
	"tagscope/internal/domain"
)

// Primitives supplies the primitive type list of a language key.
type Primitives interface {
	Profile(key string) (*lang.Profile, bool)
}

// Result is the linked view of a project. Analyses are new tables; the
// builder's input is left untouched.
type Result struct {
	Analyses   []domain.FileAnalysis
	Access     [][][]domain.ScopeRef
	Children   []domain.Containment
	Unresolved int
}

// Build runs collection, reachability, resolution and commit over the
// analyses of every file. imports[i] holds the edges of file i.
func Build(analyses []domain.FileAnalysis, imports [][]domain.ImportEdge, prims Primitives) Result {
	c := collect(analyses)
	access := reach(analyses, imports)
	plan := resolve(analyses, c, access, prims)
	out, unresolved := commit(analyses, plan)

	return Result{
		Analyses:   out,
		Access:     access,
		Children:   c.children,
		Unresolved: unresolved,
	}
}

type collection struct {
	// classes[file][declaringScope][name] is the first class tag with that
	// name declared directly in the scope.
	classes  []map[int]map[string]int
	children []domain.Containment
}

func collect(analyses []domain.FileAnalysis) collection {
	c := collection{classes: make([]map[int]map[string]int, len(analyses))}

	for file, fa := range analyses {
		byScope := make(map[int]map[string]int)
		bodyOf := make(map[int]int)
		for i, tag := range fa.Tags {
			if tag.Kind != domain.KindClass {
				continue
			}
			if _, ok := bodyOf[tag.Body]; !ok {
				bodyOf[tag.Body] = i
			}
			names := byScope[tag.Scope]
			if names == nil {
				names = make(map[string]int)
				byScope[tag.Scope] = names
			}
			if _, ok := names[tag.Name]; !ok {
				names[tag.Name] = i
			}
		}
		c.classes[file] = byScope

		members := make(map[int][]domain.TagRef)
		for i, tag := range fa.Tags {
			if tag.Kind == domain.KindClass {
				continue
			}
			if owner, ok := bodyOf[tag.Scope]; ok {
				members[owner] = append(members[owner], domain.TagRef{File: file, Tag: i})
			}
		}
		for i, tag := range fa.Tags {
			if tag.Kind != domain.KindClass || len(members[i]) == 0 {
				continue
			}
			c.children = append(c.children, domain.Containment{
				Parent:   domain.TagRef{File: file, Tag: i},
				Children: members[i],
			})
		}
	}
	return c
}

// reach computes the accessible scope set of every scope: its ancestors from
// innermost to the root, then the root of each directly imported file in
// import order, without duplicates.
func reach(analyses []domain.FileAnalysis, imports [][]domain.ImportEdge) [][][]domain.ScopeRef {
	access := make([][][]domain.ScopeRef, len(analyses))
	for file, fa := range analyses {
		var imported []int
		if file < len(imports) {
			imported = domain.TargetFiles(imports[file])
		}

		sets := make([][]domain.ScopeRef, len(fa.Scopes))
		for s := range fa.Scopes {
			var set []domain.ScopeRef
			for cur := s; cur != domain.NoScope; cur = fa.Scopes[cur].Parent {
				set = append(set, domain.ScopeRef{File: file, Scope: cur})
			}
			for _, target := range imported {
				if target == file || target >= len(analyses) {
					continue
				}
				set = append(set, domain.ScopeRef{File: target, Scope: 0})
			}
			sets[s] = set
		}
		access[file] = sets
	}
	return access
}

// resolution binds the slot-th reference of a tag or lambda.
type resolution struct {
	file   int
	index  int
	lambda bool
	slot   int
	ref    domain.TypeRef
}

func resolve(analyses []domain.FileAnalysis, c collection, access [][][]domain.ScopeRef, prims Primitives) []resolution {
	var plan []resolution

	for file, fa := range analyses {
		var profile *lang.Profile
		if prims != nil {
			profile, _ = prims.Profile(fa.Language)
		}
		lookup := func(scope int, name string) domain.TypeRef {
			if profile != nil {
				if i, ok := profile.PrimitiveIndex(name); ok {
					return domain.PrimitiveType(name, i)
				}
			}
			if scope < 0 || scope >= len(access[file]) {
				return domain.UnresolvedType(name)
			}
			for _, ref := range access[file][scope] {
				if i, ok := c.classes[ref.File][ref.Scope][name]; ok {
					return domain.DefinedType(name, ref.File, i)
				}
			}
			return domain.UnresolvedType(name)
		}

		for i, tag := range fa.Tags {
			for slot, ref := range tag.Refs() {
				if ref.IsResolved() || ref.Name == "" {
					continue
				}
				if to := lookup(tag.Scope, ref.Name); to.IsResolved() {
					plan = append(plan, resolution{file: file, index: i, slot: slot, ref: to})
				}
			}
		}
		for i, l := range fa.Lambdas {
			scope := domain.NoScope
			if l.Body >= 0 && l.Body < len(fa.Scopes) {
				scope = fa.Scopes[l.Body].Parent
			}
			for slot, ref := range lambdaRefs(l) {
				if ref.IsResolved() || ref.Name == "" {
					continue
				}
				if to := lookup(scope, ref.Name); to.IsResolved() {
					plan = append(plan, resolution{file: file, index: i, lambda: true, slot: slot, ref: to})
				}
			}
		}
	}
	return plan
}

// commit applies the plan to copies of the tag and lambda tables.
func commit(analyses []domain.FileAnalysis, plan []resolution) ([]domain.FileAnalysis, int) {
	out := make([]domain.FileAnalysis, len(analyses))
	for file, fa := range analyses {
		tags := make([]domain.Tag, len(fa.Tags))
		for i, tag := range fa.Tags {
			tags[i] = cloneTag(tag)
		}
		lambdas := make([]domain.Lambda, len(fa.Lambdas))
		for i, l := range fa.Lambdas {
			lambdas[i] = cloneLambda(l)
		}
		fa.Tags = tags
		fa.Lambdas = lambdas
		out[file] = fa
	}

	for _, r := range plan {
		if r.lambda {
			l := &out[r.file].Lambdas[r.index]
			if r.slot < len(l.Captures) {
				l.Captures[r.slot].Type = l.Captures[r.slot].Type.Resolve(r.ref)
			} else {
				p := r.slot - len(l.Captures)
				l.Params[p].Type = l.Params[p].Type.Resolve(r.ref)
			}
			continue
		}
		setRef(&out[r.file].Tags[r.index], r.slot, r.ref)
	}

	unresolved := 0
	for _, fa := range out {
		for _, tag := range fa.Tags {
			for _, ref := range tag.Refs() {
				if !ref.IsResolved() && ref.Name != "" {
					unresolved++
					slog.Debug("type left unresolved",
						"code", domain.CodeUnresolvedType, "path", fa.Path, "tag", tag.Name, "type", ref.Name)
				}
			}
		}
	}
	return out, unresolved
}

// setRef resolves the slot-th reference of tag in the order of Tag.Refs.
func setRef(tag *domain.Tag, slot int, to domain.TypeRef) {
	if slot < len(tag.Parents) {
		tag.Parents[slot].Type = tag.Parents[slot].Type.Resolve(to)
		return
	}
	slot -= len(tag.Parents)
	if tag.Kind != domain.KindClass {
		if slot == 0 {
			tag.Type = tag.Type.Resolve(to)
			return
		}
		slot--
	}
	if slot < len(tag.Params) {
		tag.Params[slot].Type = tag.Params[slot].Type.Resolve(to)
	}
}

func lambdaRefs(l domain.Lambda) []domain.TypeRef {
	refs := make([]domain.TypeRef, 0, len(l.Captures)+len(l.Params))
	for _, p := range l.Captures {
		refs = append(refs, p.Type)
	}
	for _, p := range l.Params {
		refs = append(refs, p.Type)
	}
	return refs
}

func cloneTag(t domain.Tag) domain.Tag {
	if t.Params != nil {
		t.Params = append([]domain.Param(nil), t.Params...)
	}
	if t.Parents != nil {
		t.Parents = append([]domain.Parent(nil), t.Parents...)
	}
	return t
}

func cloneLambda(l domain.Lambda) domain.Lambda {
	if l.Captures != nil {
		l.Captures = append([]domain.Param(nil), l.Captures...)
	}
	if l.Params != nil {
		l.Params = append([]domain.Param(nil), l.Params...)
	}
	return l
}
