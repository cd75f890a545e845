package domain

import "time"

// ScopeKind identifies the delimiter that opened a scope.
type ScopeKind int

const (
	ScopeRoot ScopeKind = iota
	ScopeParen
	ScopeBrace
	ScopeBracket
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopeParen:
		return "paren"
	case ScopeBrace:
		return "brace"
	case ScopeBracket:
		return "bracket"
	default:
		return "unknown"
	}
}

// RootStart is the start offset of every file's root scope. It sits before
// the first byte so that a scope opened at offset 0 still starts strictly
// inside the root.
const RootStart = -1

// NoScope marks an absent scope or tag index.
const NoScope = -1

// Scope is a lexical region bounded by a bracket pair, or the whole file.
// Start and End are byte offsets of the opener and closer.
type Scope struct {
	Start  int       `json:"start"`
	End    int       `json:"end"`
	Parent int       `json:"parent"`
	Kind   ScopeKind `json:"kind"`
	Forced bool      `json:"forced,omitempty"`
}

// TagKind identifies the variant carried by a Tag.
type TagKind string

const (
	KindClass    TagKind = "class"
	KindFunction TagKind = "function"
	KindObject   TagKind = "object"
)

// Param is a (type, name) pair from an argument or capture list.
type Param struct {
	Type TypeRef `json:"type"`
	Name string  `json:"name"`
}

// Parent is one entry of a class's base list.
type Parent struct {
	Access string  `json:"access,omitempty"`
	Type   TypeRef `json:"type"`
}

// Tag is an extracted named entity. Which fields are meaningful depends on Kind:
//   - class: Body, Parents
//   - function: Body, Type (return type), Params, NameOffset
//   - object: Type (declared type)
type Tag struct {
	Kind       TagKind  `json:"kind"`
	Name       string   `json:"name"`
	Scope      int      `json:"scope"`
	Body       int      `json:"body"`
	Offset     int      `json:"offset"`
	NameOffset int      `json:"name_offset,omitempty"`
	Type       TypeRef  `json:"type"`
	Params     []Param  `json:"params,omitempty"`
	Parents    []Parent `json:"parents,omitempty"`
	Listed     bool     `json:"listed,omitempty"`
}

// Refs returns every type reference carried by the tag, in a fixed order:
// parents, then the tag's own type, then parameters.
func (t Tag) Refs() []TypeRef {
	var refs []TypeRef
	for _, p := range t.Parents {
		refs = append(refs, p.Type)
	}
	if t.Kind != KindClass {
		refs = append(refs, t.Type)
	}
	for _, p := range t.Params {
		refs = append(refs, p.Type)
	}
	return refs
}

// Lambda is an anonymous function with a body scope.
type Lambda struct {
	Body     int     `json:"body"`
	Offset   int     `json:"offset"`
	Captures []Param `json:"captures,omitempty"`
	Params   []Param `json:"params,omitempty"`
}

// Call is a `name(` site that is not a function declaration.
type Call struct {
	Offset    int    `json:"offset"`
	Name      string `json:"name"`
	ArgsScope int    `json:"args_scope"`
}

// Span is a piece of source text anchored at an absolute offset.
type Span struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Equation is an assignment split at its first '='. The chain fields index
// the access chain starting exactly at the side's offset, or NoScope.
type Equation struct {
	LHS      Span `json:"lhs"`
	RHS      Span `json:"rhs"`
	LHSChain int  `json:"lhs_chain"`
	RHSChain int  `json:"rhs_chain"`
}

// ChainLink is one step of an access chain: either a call (Call >= 0) or a bare name.
type ChainLink struct {
	Offset int    `json:"offset"`
	Name   string `json:"name"`
	Call   int    `json:"call"`
}

// AccessChain is a member-access route such as a.b->c(x).
type AccessChain struct {
	Offset int         `json:"offset"`
	Links  []ChainLink `json:"links"`
}

// TagEntry is one line of the tag-listing input.
type TagEntry struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Context string `json:"context,omitempty"`
}

// TagKind maps the listing's one-letter kind to a TagKind, if it has one.
func (e TagEntry) TagKind() (TagKind, bool) {
	switch e.Kind {
	case "c":
		return KindClass, true
	case "f":
		return KindFunction, true
	case "m":
		return KindObject, true
	default:
		return "", false
	}
}

// FileAnalysis is everything extracted from one file.
type FileAnalysis struct {
	Path      string        `json:"path"`
	Language  string        `json:"language"`
	Scopes    []Scope       `json:"scopes"`
	Tags      []Tag         `json:"tags"`
	Lambdas   []Lambda      `json:"lambdas,omitempty"`
	Calls     []Call        `json:"calls,omitempty"`
	Equations []Equation    `json:"equations,omitempty"`
	Chains    []AccessChain `json:"chains,omitempty"`
	Unmatched []TagEntry    `json:"unmatched,omitempty"`
	Strays    []int         `json:"strays,omitempty"`
	Err       ErrorCode     `json:"error,omitempty"`
}

// ImportKind separates project files from opaque packages.
type ImportKind string

const (
	ImportFile    ImportKind = "file"
	ImportPackage ImportKind = "package"
)

// ImportEdge is one resolved import line. Target is the index of the imported
// file in the project's file list, or NoScope when the target is a package or
// a file outside the indexed set.
type ImportEdge struct {
	From   int        `json:"from"`
	Raw    string     `json:"raw"`
	Kind   ImportKind `json:"kind"`
	Path   string     `json:"path,omitempty"`
	Target int        `json:"target"`
}

// ScopeRef addresses a scope across files.
type ScopeRef struct {
	File  int `json:"file"`
	Scope int `json:"scope"`
}

// TagRef addresses a tag across files.
type TagRef struct {
	File int `json:"file"`
	Tag  int `json:"tag"`
}

// Containment lists the members declared directly in a class body.
type Containment struct {
	Parent   TagRef   `json:"parent"`
	Children []TagRef `json:"children"`
}

// FileError records a per-file failure that degraded only that file.
type FileError struct {
	File    string    `json:"file"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ProjectIndex is one complete, immutable snapshot of a project.
type ProjectIndex struct {
	ID          string         `json:"id"`
	ProjectPath string         `json:"project_path"`
	TagsPath    string         `json:"tags_path"`
	BuiltAt     time.Time      `json:"built_at"`
	Files       []string       `json:"files"`
	Analyses    []FileAnalysis `json:"analyses"`
	Imports     [][]ImportEdge `json:"imports"`
	Access      [][][]ScopeRef `json:"access"`
	Children    []Containment  `json:"children"`
	Errors      []FileError    `json:"errors,omitempty"`
}

// Tag returns the tag addressed by ref, if it exists.
func (p *ProjectIndex) Tag(ref TagRef) (Tag, bool) {
	if p == nil || ref.File < 0 || ref.File >= len(p.Analyses) {
		return Tag{}, false
	}
	tags := p.Analyses[ref.File].Tags
	if ref.Tag < 0 || ref.Tag >= len(tags) {
		return Tag{}, false
	}
	return tags[ref.Tag], true
}

// ImportedFiles returns the indexed files directly imported by file, in
// import order without duplicates.
func (p *ProjectIndex) ImportedFiles(file int) []int {
	if p == nil || file < 0 || file >= len(p.Imports) {
		return nil
	}
	return TargetFiles(p.Imports[file])
}

// TargetFiles returns the distinct indexed targets of edges, in order.
func TargetFiles(edges []ImportEdge) []int {
	var out []int
	seen := make(map[int]bool)
	for _, e := range edges {
		if e.Target < 0 || seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		out = append(out, e.Target)
	}
	return out
}
