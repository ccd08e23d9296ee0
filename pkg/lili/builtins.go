package lili

// Builtin identifies a library operator. It is resolved once, when the
// symbol table is built, so lowering never compares names.
type Builtin int

const (
	NotBuiltin Builtin = iota
	BuiltinIf
	BuiltinAdd
	BuiltinSub
	BuiltinMul
	BuiltinDiv
	BuiltinGt
	BuiltinLt
	BuiltinGe
	BuiltinLe
	BuiltinEq
	BuiltinNe
	BuiltinCar
	BuiltinCdr
	BuiltinNull
	BuiltinAtom
	BuiltinCons
)

// RuntimePrefix starts every name the runtime header declares. User names
// may not use it.
const RuntimePrefix = "ll_"

// Runtime entry points provided by the lili runtime header.
const (
	RuntimeCar     = "ll_car"
	RuntimeCdr     = "ll_cdr"
	RuntimeNull    = "ll_null"
	RuntimeAtom    = "ll_atom"
	RuntimeCons    = "ll_cons"
	RuntimeNoMatch = "ll_no_match"
)

// Reserved forms that are not in the symbol table but can't be redefined.
const (
	DefunForm = "defun"
	CondForm  = "cond"
)

type builtinSpec struct {
	name   string
	op     Builtin
	params []VarType
	ret    VarType
}

func binaryInt(name string, op Builtin) builtinSpec {
	return builtinSpec{name: name, op: op, params: []VarType{Integer, Integer}, ret: Integer}
}

func unaryAny(name string, op Builtin, ret VarType) builtinSpec {
	return builtinSpec{name: name, op: op, params: []VarType{Any}, ret: ret}
}

var builtinSpecs = []builtinSpec{
	binaryInt("+", BuiltinAdd),
	binaryInt("-", BuiltinSub),
	binaryInt("*", BuiltinMul),
	binaryInt("/", BuiltinDiv),
	binaryInt(">", BuiltinGt),
	binaryInt("<", BuiltinLt),
	binaryInt(">=", BuiltinGe),
	binaryInt("<=", BuiltinLe),
	binaryInt("=", BuiltinEq),
	binaryInt("!=", BuiltinNe),
	unaryAny("car", BuiltinCar, Any),
	unaryAny("cdr", BuiltinCdr, Any),
	unaryAny("null", BuiltinNull, Integer),
	unaryAny("atom", BuiltinAtom, Integer),
	{name: "cons", op: BuiltinCons, params: []VarType{Any, Any}, ret: Any},
	{name: "if", op: BuiltinIf, params: []VarType{Integer, Any, Any}, ret: Any},
}

// infixOperators maps the binary operators to their C spelling.
var infixOperators = map[Builtin]string{
	BuiltinAdd: "+",
	BuiltinSub: "-",
	BuiltinMul: "*",
	BuiltinDiv: "/",
	BuiltinGt:  ">",
	BuiltinLt:  "<",
	BuiltinGe:  ">=",
	BuiltinLe:  "<=",
	BuiltinEq:  "==",
	BuiltinNe:  "!=",
}

// runtimeCalls maps list intrinsics to their runtime function.
var runtimeCalls = map[Builtin]string{
	BuiltinCar:  RuntimeCar,
	BuiltinCdr:  RuntimeCdr,
	BuiltinNull: RuntimeNull,
	BuiltinAtom: RuntimeAtom,
	BuiltinCons: RuntimeCons,
}

func (s builtinSpec) definition() *FunctionDefinition {
	params := make([]Param, len(s.params))
	for i, t := range s.params {
		params[i] = Param{Name: "op" + string(rune('1'+i)), Type: t}
	}
	return &FunctionDefinition{
		Name:    s.name,
		Params:  params,
		Ret:     s.ret,
		Builtin: s.op,
	}
}

// IsReserved reports whether name belongs to a built-in or a reserved form.
func IsReserved(name string) bool {
	if name == DefunForm || name == CondForm {
		return true
	}
	for _, s := range builtinSpecs {
		if s.name == name {
			return true
		}
	}
	return false
}
