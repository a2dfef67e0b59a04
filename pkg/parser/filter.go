package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// NameFilter matches fully qualified native names against a set of
// patterns. The zero value matches nothing.
type NameFilter struct {
	re *regexp.Regexp
}

// CompilePatterns joins patterns into one anchored alternation. Each pattern
// must match the whole name.
func CompilePatterns(patterns []string) (*NameFilter, error) {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		parts = append(parts, "(?:"+p+")")
	}
	if len(parts) == 0 {
		return &NameFilter{}, nil
	}
	re, err := regexp.Compile("^(?:" + strings.Join(parts, "|") + ")$")
	if err != nil {
		return nil, err
	}
	return &NameFilter{re: re}, nil
}

// MustCompilePatterns is CompilePatterns for patterns known to be valid.
func MustCompilePatterns(patterns ...string) *NameFilter {
	f, err := CompilePatterns(patterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether name matches any pattern.
func (f *NameFilter) Match(name string) bool {
	if f == nil || f.re == nil {
		return false
	}
	return f.re.MatchString(name)
}

// NameSet is a case-sensitive set of fully qualified names.
type NameSet map[string]struct{}

func NewNameSet(names ...[]string) NameSet {
	s := make(NameSet)
	for _, list := range names {
		for _, n := range list {
			n = strings.TrimSpace(n)
			if n != "" {
				s[n] = struct{}{}
			}
		}
	}
	return s
}

func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
