package lili

// VarType is the closed set of types the inference engine works with.
type VarType int

const (
	// Any is the universal supertype; it is compatible with everything.
	Any VarType = iota
	Integer
	Char
	String
	List
	// Nothing is the bottom sentinel. It marks a type that has not been
	// derived yet, or an argument whose uses conflict.
	Nothing
)

var varTypeNames = [...]string{
	Any:     "Any",
	Integer: "Integer",
	Char:    "Char",
	String:  "String",
	List:    "List",
	Nothing: "Nothing",
}

func (t VarType) String() string {
	if t < Any || t > Nothing {
		return "VarType(?)"
	}
	return varTypeNames[t]
}

// Sup merges two observations of an argument's type. Any is the identity
// and any disagreement collapses to Nothing.
func Sup(a, b VarType) VarType {
	switch {
	case a == Any:
		return b
	case b == Any:
		return a
	case a == b:
		return a
	default:
		return Nothing
	}
}

// Inf merges two observations of a result type. Nothing is the identity
// and any disagreement widens to Any.
func Inf(a, b VarType) VarType {
	switch {
	case a == Nothing:
		return b
	case b == Nothing:
		return a
	case a == b:
		return a
	default:
		return Any
	}
}

// IsCompatible reports whether a value of type actual may be passed where
// declared is expected.
func IsCompatible(declared, actual VarType) bool {
	return declared == Any || actual == Any || declared == actual
}
