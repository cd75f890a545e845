package lang

// Patterns is the ordered pattern list per entity kind for one language.
// Capture groups are fixed per kind:
//   - Classes: 1 name, 2 optional parent list
//   - Functions: 1 return type, 2 name, 3 argument list
//   - Objects: 1 type, 2 name
//   - Lambdas: 1 captures, 2 parameters
//   - Calls: group 0 only, ending in '('
//   - Equations: the first group (0 included) holding '='
//   - Chains: group 0 only
type Patterns struct {
	Classes   []string `yaml:"classes"`
	Functions []string `yaml:"functions"`
	Objects   []string `yaml:"objects"`
	Lambdas   []string `yaml:"lambdas"`
	Calls     []string `yaml:"calls"`
	Equations []string `yaml:"equations"`
	Chains    []string `yaml:"chains"`
}

// Append returns p with every list of extra added after p's own.
func (p Patterns) Append(extra Patterns) Patterns {
	return Patterns{
		Classes:   concat(p.Classes, extra.Classes),
		Functions: concat(p.Functions, extra.Functions),
		Objects:   concat(p.Objects, extra.Objects),
		Lambdas:   concat(p.Lambdas, extra.Lambdas),
		Calls:     concat(p.Calls, extra.Calls),
		Equations: concat(p.Equations, extra.Equations),
		Chains:    concat(p.Chains, extra.Chains),
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

const (
	word       = `[A-Za-z_]\w*`
	callOrWord = `(?:` + word + `\([^()]*\)|` + word + `)`
	typeText   = `([A-Za-z_][\w \t\*&:<>]*[ \t\*&])[ \t]*`
	chain      = callOrWord + `(?:\s*(?:\.|->)\s*` + callOrWord + `)+`
)

var (
	functionPattern = typeText + `(` + word + `)\s*\(([^()]*)\)\s*\{`
	objectInitPat   = typeText + `(` + word + `)[ \t]*=[^=;][^;]*;`
	objectDeclPat   = typeText + `(` + word + `)[ \t]*;`
	classPattern    = `class\s+(\w+)(?:\s*:\s*([\w\s,]+?))?\s*\{`
	structPattern   = `struct\s+(\w+)(?:\s*:\s*([\w\s,]+?))?\s*\{`
	lambdaPattern   = `\[([^\[\]]*)\]\s*\(([^()]*)\)\s*(?:->\s*[\w:<>\*&]+\s*)?\{`
	callPattern     = word + `\s*\(`
	equationPattern = `(\w+)\s*=\s*.*;`
	chainEqPattern  = chain + `\s*=\s*` + chain + `\s*;`
	chainPattern    = chain
)

// DefaultBank returns the built-in pattern bank keyed by language.
func DefaultBank() map[string]Patterns {
	c := Patterns{
		Classes:   []string{structPattern},
		Functions: []string{functionPattern},
		Objects:   []string{objectInitPat, objectDeclPat},
		Lambdas:   []string{lambdaPattern},
		Calls:     []string{callPattern},
		Equations: []string{equationPattern, chainEqPattern},
		Chains:    []string{chainPattern},
	}
	cpp := c
	cpp.Classes = []string{classPattern, structPattern}
	return map[string]Patterns{
		"c":   c,
		"cpp": cpp,
	}
}

var primitives = []string{
	"void",
	"char",
	"signed char",
	"unsigned char",
	"short",
	"short int",
	"signed short",
	"signed short int",
	"unsigned short",
	"unsigned short int",
	"int",
	"signed",
	"signed int",
	"unsigned",
	"unsigned int",
	"long",
	"long int",
	"signed long",
	"signed long int",
	"unsigned long",
	"unsigned long int",
	"long long",
	"long long int",
	"signed long long",
	"signed long long int",
	"unsigned long long",
	"unsigned long long int",
	"float",
	"double",
	"long double",
}

var cppPrimitives = append(append([]string{}, primitives...), "bool", "wchar_t", "char16_t", "char32_t")

// Words that open statements or visibility sections. A candidate whose
// leading word is one of these is a control-flow false positive.
var reserved = []string{
	"break", "case", "catch", "class", "continue", "default", "delete",
	"do", "else", "for", "goto", "if", "namespace", "new", "operator",
	"private", "protected", "public", "return", "sizeof", "switch",
	"template", "throw", "try", "typedef", "using", "while",
}

// extensions maps a file extension (without the dot) to a language key.
var extensions = map[string]string{
	"c":   "c",
	"cpp": "cpp",
	"cc":  "cpp",
	"cxx": "cpp",
	"h":   "cpp",
	"hpp": "cpp",
}
