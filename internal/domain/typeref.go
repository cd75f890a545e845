package domain

// Resolution is the state of a TypeRef.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedDefinition
	ResolvedPrimitive
)

func (r Resolution) String() string {
	switch r {
	case ResolvedDefinition:
		return "definition"
	case ResolvedPrimitive:
		return "primitive"
	default:
		return "unresolved"
	}
}

// TypeRef is a reference to a type by name. It is a value: resolving returns
// a new TypeRef and never changes a reference that is already resolved.
type TypeRef struct {
	State     Resolution `json:"state"`
	Name      string     `json:"name"`
	File      int        `json:"file"`
	Tag       int        `json:"tag"`
	Primitive int        `json:"primitive"`
}

// UnresolvedType returns a reference that still needs resolving.
func UnresolvedType(name string) TypeRef {
	return TypeRef{State: Unresolved, Name: name, File: NoScope, Tag: NoScope, Primitive: NoScope}
}

// DefinedType returns a reference bound to the class tag (file, tag).
func DefinedType(name string, file, tag int) TypeRef {
	return TypeRef{State: ResolvedDefinition, Name: name, File: file, Tag: tag, Primitive: NoScope}
}

// PrimitiveType returns a reference bound to entry index of a primitive list.
func PrimitiveType(name string, index int) TypeRef {
	return TypeRef{State: ResolvedPrimitive, Name: name, File: NoScope, Tag: NoScope, Primitive: index}
}

func (r TypeRef) IsResolved() bool {
	return r.State != Unresolved
}

// Resolve returns r bound to to. A resolved r is returned unchanged, as is r
// when to carries no resolution.
func (r TypeRef) Resolve(to TypeRef) TypeRef {
	if r.IsResolved() || !to.IsResolved() {
		return r
	}
	to.Name = r.Name
	return to
}

// Definition returns the tag the reference points at.
func (r TypeRef) Definition() (TagRef, bool) {
	if r.State != ResolvedDefinition {
		return TagRef{}, false
	}
	return TagRef{File: r.File, Tag: r.Tag}, true
}
