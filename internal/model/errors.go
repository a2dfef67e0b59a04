package model

import (
	"fmt"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// InvariantCode identifies a malformed-input condition the analysis cannot
// reason past.
type InvariantCode string

const (
	// InvariantClassType means a class declaration has no type.
	InvariantClassType InvariantCode = "CLASS_TYPE"
	// InvariantDisplayName means a declaration has no display name.
	InvariantDisplayName InvariantCode = "DISPLAY_NAME"
	// InvariantBaseDefinition means a declared base has no definition.
	InvariantBaseDefinition InvariantCode = "BASE_DEFINITION"
	// InvariantBaseDepth means the inheritance chain is deeper than the
	// configured bound, which only a cycle in the input can produce.
	InvariantBaseDepth InvariantCode = "BASE_DEPTH"
)

// InvariantError aborts an analysis pass. Model operations panic with it and
// CatchInvariant turns it back into an error at the pass boundary.
type InvariantError struct {
	Code    InvariantCode `json:"code"`
	USR     string        `json:"usr,omitempty"`
	Message string        `json:"message"`
}

func (e *InvariantError) Error() string {
	if e.USR != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, e.USR)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func invariant(code InvariantCode, e entity.Entity, format string, args ...any) {
	err := &InvariantError{Code: code, Message: fmt.Sprintf(format, args...)}
	if e != nil {
		err.USR = e.USR()
	}
	panic(err)
}

// CatchInvariant runs fn and converts an InvariantError panic into an error.
// Any other panic is propagated.
func CatchInvariant(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	fn()
	return nil
}
