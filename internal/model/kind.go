// Package model decides how native classes are represented in the target
// language and which ancillary types their generated surface depends on.
package model

import "fmt"

// Kind is the representation strategy of a class. It is a closed set; every
// switch over it must handle all four values.
type Kind uint8

const (
	KindExcluded Kind = iota // not surfaced at all
	KindSimple               // value type, copied across the boundary
	KindBoxed                // opaque, always behind an indirection
	KindSystem               // has an idiomatic target equivalent
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindBoxed:
		return "boxed"
	case KindSystem:
		return "system"
	case KindExcluded:
		return "excluded"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k > KindSystem {
		return nil, fmt.Errorf("unknown class kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "simple":
		*k = KindSimple
	case "boxed":
		*k = KindBoxed
	case "system":
		*k = KindSystem
	case "excluded":
		*k = KindExcluded
	default:
		return fmt.Errorf("unknown class kind %q", text)
	}
	return nil
}
