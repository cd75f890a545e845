package analyzer

import (
	"strings"

	"tagscope/internal/domain"
)

// splitArgs splits an argument or capture list on commas and each piece at
// its last space into (type, name). Pieces without a space carry no type and
// are dropped. Nested commas are not special.
func splitArgs(list string) []domain.Param {
	var params []domain.Param
	for _, piece := range strings.Split(list, ",") {
		typ, name, ok := splitLastSpace(piece)
		if !ok {
			continue
		}
		params = append(params, domain.Param{Type: domain.UnresolvedType(typ), Name: name})
	}
	return params
}

// splitParents splits a class's base list. Each piece is split at its last
// space into (access, type); a bare piece is a type with no access specifier.
func splitParents(list string) []domain.Parent {
	var parents []domain.Parent
	for _, piece := range strings.Split(list, ",") {
		access, typ, ok := splitLastSpace(piece)
		if !ok {
			typ = strings.TrimSpace(piece)
			access = ""
		}
		if typ == "" {
			continue
		}
		parents = append(parents, domain.Parent{Access: access, Type: domain.UnresolvedType(typ)})
	}
	return parents
}

// splitLastSpace trims s and splits it at the last whitespace character.
func splitLastSpace(s string) (head, tail string, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, " \t\r\n")
	if i < 0 {
		return "", s, false
	}
	return strings.TrimSpace(s[:i]), s[i+1:], true
}
