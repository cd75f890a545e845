package lang

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"tagscope/internal/domain"
)

// Profile is the compiled pattern bank of one language together with its
// primitive type list.
type Profile struct {
	Key        string
	Primitives []string

	Classes   []*regexp.Regexp
	Functions []*regexp.Regexp
	Objects   []*regexp.Regexp
	Lambdas   []*regexp.Regexp
	Calls     []*regexp.Regexp
	Equations []*regexp.Regexp
	Chains    []*regexp.Regexp

	reserved map[string]bool
}

// PrimitiveIndex returns the position of name in the primitive list.
func (p *Profile) PrimitiveIndex(name string) (int, bool) {
	for i, prim := range p.Primitives {
		if prim == name {
			return i, true
		}
	}
	return 0, false
}

// IsReserved reports whether the leading identifier of text is a statement
// or visibility keyword. Callers strip access labels first.
func (p *Profile) IsReserved(text string) bool {
	return p.reserved[leadingWord(strings.TrimLeft(text, " \t\r\n"))]
}

// StripAccessLabel removes a leading `public:`, `protected:` or `private:`
// label from a type text. A scope qualifier such as `public::T` is kept.
func StripAccessLabel(text string) string {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	word := leadingWord(trimmed)
	if word != "public" && word != "protected" && word != "private" {
		return text
	}
	rest := strings.TrimLeft(trimmed[len(word):], " \t\r\n")
	if !strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "::") {
		return text
	}
	return strings.TrimSpace(rest[1:])
}

func leadingWord(text string) string {
	end := 0
	for end < len(text) && IsIdent(text[end]) {
		end++
	}
	return text[:end]
}

// IsIdent reports whether b can appear in an identifier.
func IsIdent(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Registry resolves file paths to compiled language profiles.
type Registry struct {
	profiles  map[string]*Profile
	malformed []string
}

// NewRegistry compiles the default bank with extra patterns appended per
// language key. Patterns that fail to compile are logged and left out; extra
// patterns for an unknown key are ignored.
func NewRegistry(extra map[string]Patterns) *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	bank := DefaultBank()
	for _, key := range keys {
		base, ok := bank[key]
		if !ok {
			slog.Warn("ignoring patterns for unknown language",
				"code", domain.CodeUnsupportedLanguage, "language", key)
			continue
		}
		bank[key] = base.Append(extra[key])
	}

	for key, patterns := range bank {
		prims := primitives
		if key == "cpp" {
			prims = cppPrimitives
		}
		p := &Profile{Key: key, Primitives: prims, reserved: make(map[string]bool, len(reserved))}
		for _, w := range reserved {
			p.reserved[w] = true
		}
		p.Classes = r.compile(key, patterns.Classes)
		p.Functions = r.compile(key, patterns.Functions)
		p.Objects = r.compile(key, patterns.Objects)
		p.Lambdas = r.compile(key, patterns.Lambdas)
		p.Calls = r.compile(key, patterns.Calls)
		p.Equations = r.compile(key, patterns.Equations)
		p.Chains = r.compile(key, patterns.Chains)
		r.profiles[key] = p
	}
	sort.Strings(r.malformed)
	return r
}

func (r *Registry) compile(key string, sources []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			slog.Warn("skipping malformed pattern",
				"code", domain.CodeMalformedPattern, "language", key, "pattern", src, "error", err)
			r.malformed = append(r.malformed, src)
			continue
		}
		out = append(out, re)
	}
	return out
}

// Malformed returns the patterns that were skipped because they did not compile.
func (r *Registry) Malformed() []string {
	return r.malformed
}

// Profile returns the profile for a language key.
func (r *Registry) Profile(key string) (*Profile, bool) {
	p, ok := r.profiles[key]
	return p, ok
}

// ForPath returns the profile for the language of path.
func (r *Registry) ForPath(path string) (*Profile, bool) {
	key, ok := LanguageOf(path)
	if !ok {
		return nil, false
	}
	return r.Profile(key)
}

// LanguageOf maps a file path to its language key by extension.
func LanguageOf(path string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	key, ok := extensions[ext]
	return key, ok
}
