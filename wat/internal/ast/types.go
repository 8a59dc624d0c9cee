package ast

// Module is the subset of a core wasm module that script modules use:
// function types, function imports, functions and function exports.
type Module struct {
	Types   []FuncType
	Imports []Import
	Funcs   []uint32 // type index per defined function
	Exports []Export
	Code    []FuncBody
}

type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) Equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

type Export struct {
	Name string
	Idx  uint32
}

type FuncBody struct {
	Locals []ValType
	Code   []Instr
}

// Instr is one instruction. Imm holds uint32 for indices and labels, int32
// or int64 for constants, and byte for block types.
type Instr struct {
	Imm    any
	Opcode byte
}
