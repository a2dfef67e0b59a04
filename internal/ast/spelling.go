package ast

import (
	"strings"
	"unicode"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// ResolveSpelling parses a type as written in configuration, "const
// std::vector<cv::Point>&", and resolves its names from scope.
func (p *Program) ResolveSpelling(scope, spelling string) (entity.Type, bool) {
	t, ok := p.ParseSpelling(scope, spelling)
	if !ok {
		return nil, false
	}
	return t, true
}

// ParseSpelling is ResolveSpelling returning the concrete type expression.
func (p *Program) ParseSpelling(scope, spelling string) (*TypeExpr, bool) {
	s := strings.TrimSpace(spelling)
	if s == "" {
		return nil, false
	}

	// declarator suffix: pointers, references, trailing const
	var suffix []string
suffixes:
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasSuffix(s, "&&"):
			suffix = append(suffix, "&&")
			s = s[:len(s)-2]
		case strings.HasSuffix(s, "&"), strings.HasSuffix(s, "*"):
			suffix = append(suffix, s[len(s)-1:])
			s = s[:len(s)-1]
		case hasWordSuffix(s, "const"):
			suffix = append(suffix, "const")
			s = s[:len(s)-len("const")]
		default:
			break suffixes
		}
	}

	isConst := false
	if hasWordPrefix(s, "const") {
		isConst = true
		s = strings.TrimSpace(s[len("const"):])
	}
	if s == "" {
		return nil, false
	}

	var t *TypeExpr
	if i := strings.IndexByte(s, '<'); i > 0 && strings.HasSuffix(s, ">") {
		var args []*TypeExpr
		for _, a := range splitTopLevel(s[i+1 : len(s)-1]) {
			a = strings.TrimSpace(a)
			if isLiteral(a) {
				args = append(args, Literal(a))
				continue
			}
			at, ok := p.ParseSpelling(scope, a)
			if !ok {
				return nil, false
			}
			args = append(args, at)
		}
		t = p.Named(scope, strings.TrimSpace(s[:i]), args...)
	} else {
		t = p.Named(scope, strings.Join(strings.Fields(s), " "))
	}

	// suffix was collected outside in, apply it inside out
	for i := len(suffix) - 1; i >= 0; i-- {
		switch suffix[i] {
		case "const":
			isConst = true
		case "*":
			if isConst {
				t = t.Const()
				isConst = false
			}
			t = Pointer(t)
		case "&":
			if isConst {
				t = t.Const()
				isConst = false
			}
			t = Reference(t)
		case "&&":
			if isConst {
				t = t.Const()
				isConst = false
			}
			t = RValueReference(t)
		}
	}
	if isConst {
		t = t.Const()
	}
	return t, true
}

func hasWordPrefix(s, word string) bool {
	return strings.HasPrefix(s, word) && (len(s) == len(word) || !isIdentRune(rune(s[len(word)])))
}

func hasWordSuffix(s, word string) bool {
	return strings.HasSuffix(s, word) && (len(s) == len(word) || !isIdentRune(rune(s[len(s)-len(word)-1])))
}

func isIdentRune(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s == "true" || s == "false" {
		return true
	}
	r := rune(s[0])
	return unicode.IsDigit(r) || r == '-'
}

// splitTopLevel splits a template argument list at commas outside nested
// angle brackets and parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
