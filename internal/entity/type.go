package entity

type TypeKind int

const (
	TypeInvalid       TypeKind = iota
	TypeVoid                   // void
	TypePrimitive              // int, double, bool, char, size_t, ...
	TypeRecord                 // class or struct, possibly a template instance
	TypeEnum                   // enum
	TypePointer                // T*
	TypeReference              // T&
	TypeRValueReference        // T&&
	TypeArray                  // T[N] or T[]
	TypeTypedef                // typedef / using alias
	TypeTemplateParam          // T inside a template pattern
	TypeUnknown                // spelled, but not resolvable
)

func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypePrimitive:
		return "primitive"
	case TypeRecord:
		return "record"
	case TypeEnum:
		return "enum"
	case TypePointer:
		return "pointer"
	case TypeReference:
		return "reference"
	case TypeRValueReference:
		return "rvalue_reference"
	case TypeArray:
		return "array"
	case TypeTypedef:
		return "typedef"
	case TypeTemplateParam:
		return "template_param"
	case TypeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Type is one occurrence of a native type.
type Type interface {
	// Spelling is the fully qualified spelling, "const cv::Point_<int>&".
	Spelling() string
	Kind() TypeKind
	IsConst() bool
	// Pointee is the target of a pointer or reference and the element of an
	// array.
	Pointee() (Type, bool)
	// ArraySize is only present for fixed-size arrays.
	ArraySize() (int, bool)
	// Declaration is the record, enum or typedef the type names.
	Declaration() (Entity, bool)
	// QualifiedName is the name of the named type without qualifiers or
	// template arguments, "std::vector" for std::vector<int>.
	QualifiedName() string
	TemplateArgs() []Type
	// Underlying resolves one typedef level.
	Underlying() (Type, bool)
}
