package analyzer

import (
	"strings"

	"tagscope/internal/adapter/lang"
	"tagscope/internal/domain"
)

// walkChain splits the chain text in [start, end) into links. Separators
// are whitespace, '.' and "->"; ';' or '=' ends the chain. A link that starts
// where a call was extracted becomes that call and the walk resumes after its
// argument scope. The walk stops as soon as a step makes no progress.
func (x *extraction) walkChain(start, end int, callAt map[int]int) []domain.ChainLink {
	var links []domain.ChainLink
	pos := start
	for pos < end {
		pos = skipSeparators(x.text, pos, end)
		if pos >= end || x.text[pos] == ';' || x.text[pos] == '=' {
			break
		}

		if ci, ok := callAt[pos]; ok {
			call := x.callList[ci]
			links = append(links, domain.ChainLink{Offset: pos, Name: call.Name, Call: ci})
			next := x.scopes[call.ArgsScope].End + 1
			if next <= pos {
				break
			}
			pos = next
			continue
		}

		n := pos
		for n < end && lang.IsIdent(x.text[n]) {
			n++
		}
		if n == pos {
			break
		}
		links = append(links, domain.ChainLink{Offset: pos, Name: x.text[pos:n], Call: domain.NoScope})
		pos = n
	}
	return links
}

func skipSeparators(text string, pos, end int) int {
	for pos < end {
		switch {
		case isSpace(text[pos]) || text[pos] == '.':
			pos++
		case strings.HasPrefix(text[pos:end], "->"):
			pos += 2
		default:
			return pos
		}
	}
	return pos
}
