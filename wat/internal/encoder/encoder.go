package encoder

import (
	"github.com/wippyai/script-bridge/wat/internal/ast"
)

func Encode(m *ast.Module) []byte {
	buf := &Buffer{}
	buf.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	if len(m.Types) > 0 {
		sec := &Buffer{}
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.AppendByte(ast.FuncTypeMarker)
			sec.WriteU32(uint32(len(ft.Params)))
			for _, p := range ft.Params {
				sec.AppendByte(byte(p))
			}
			sec.WriteU32(uint32(len(ft.Results)))
			for _, r := range ft.Results {
				sec.AppendByte(byte(r))
			}
		}
		buf.writeSection(ast.SectionType, sec)
	}

	if len(m.Imports) > 0 {
		sec := &Buffer{}
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteString(imp.Module)
			sec.WriteString(imp.Name)
			sec.AppendByte(ast.KindFunc)
			sec.WriteU32(imp.TypeIdx)
		}
		buf.writeSection(ast.SectionImport, sec)
	}

	if len(m.Funcs) > 0 {
		sec := &Buffer{}
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, typeIdx := range m.Funcs {
			sec.WriteU32(typeIdx)
		}
		buf.writeSection(ast.SectionFunc, sec)
	}

	if len(m.Exports) > 0 {
		sec := &Buffer{}
		sec.WriteU32(uint32(len(m.Exports)))
		for _, e := range m.Exports {
			sec.WriteString(e.Name)
			sec.AppendByte(ast.KindFunc)
			sec.WriteU32(e.Idx)
		}
		buf.writeSection(ast.SectionExport, sec)
	}

	if len(m.Code) > 0 {
		encodeCodeSection(buf, m)
	}

	return buf.Bytes
}

func encodeCodeSection(buf *Buffer, m *ast.Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Code)))
	for _, c := range m.Code {
		code := &Buffer{}

		// Group consecutive locals
		type group struct {
			count uint32
			vt    ast.ValType
		}
		var groups []group
		for _, l := range c.Locals {
			if len(groups) > 0 && groups[len(groups)-1].vt == l {
				groups[len(groups)-1].count++
			} else {
				groups = append(groups, group{1, l})
			}
		}

		code.WriteU32(uint32(len(groups)))
		for _, g := range groups {
			code.WriteU32(g.count)
			code.AppendByte(byte(g.vt))
		}

		for _, ins := range c.Code {
			EncodeInstr(code, ins)
		}

		sec.WriteU32(uint32(len(code.Bytes)))
		sec.WriteBytes(code.Bytes)
	}
	buf.writeSection(ast.SectionCode, sec)
}

func EncodeInstr(buf *Buffer, ins ast.Instr) {
	buf.AppendByte(ins.Opcode)

	switch ins.Opcode {
	case ast.OpBr, ast.OpBrIf, ast.OpCall,
		ast.OpLocalGet, ast.OpLocalSet, ast.OpLocalTee:
		buf.WriteU32(ins.Imm.(uint32))
	case ast.OpI32Const:
		buf.WriteI64(int64(ins.Imm.(int32)))
	case ast.OpI64Const:
		buf.WriteI64(ins.Imm.(int64))
	case ast.OpBlock, ast.OpLoop, ast.OpIf:
		buf.AppendByte(ins.Imm.(byte))
	}
}
