package parser

import (
	"testing"

	"github.com/wippyai/script-bridge/wat/internal/ast"
	"github.com/wippyai/script-bridge/wat/internal/token"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := New(token.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return mod
}

func TestParse_ImportsPrecedeFuncs(t *testing.T) {
	mod := parse(t, `(module
		(func $first (export "first") (result i64) (call $new))
		(import "host" "new" (func $new (result i64)))
		(import "host" "drop" (func $drop (param i64)))
		(func (export "second") (call $drop (call $first))))`)

	if len(mod.Imports) != 2 || len(mod.Funcs) != 2 {
		t.Fatalf("imports=%d funcs=%d, want 2 and 2", len(mod.Imports), len(mod.Funcs))
	}
	// () -> i64 is shared by $first and $new.
	if len(mod.Types) != 3 {
		t.Fatalf("types = %d, want 3", len(mod.Types))
	}
	want := map[string]uint32{"first": 2, "second": 3}
	for _, e := range mod.Exports {
		if want[e.Name] != e.Idx {
			t.Errorf("export %s idx = %d, want %d", e.Name, e.Idx, want[e.Name])
		}
	}

	first := mod.Code[0].Code
	if first[0].Opcode != ast.OpCall || first[0].Imm.(uint32) != 0 {
		t.Fatalf("first body = %+v, want call 0", first)
	}
	second := mod.Code[1].Code
	if second[0].Imm.(uint32) != 2 || second[1].Imm.(uint32) != 1 {
		t.Fatalf("second body = %+v, want call 2; call 1", second)
	}
}

func TestParse_LabelDepth(t *testing.T) {
	mod := parse(t, `(module
		(func
			(block $outer
				(block
					(loop $inner
						(br $outer)
						(br $inner)
						(br 3))))))`)

	var depths []uint32
	for _, ins := range mod.Code[0].Code {
		if ins.Opcode == ast.OpBr {
			depths = append(depths, ins.Imm.(uint32))
		}
	}
	if len(depths) != 3 || depths[0] != 2 || depths[1] != 0 || depths[2] != 3 {
		t.Fatalf("depths = %v, want [2 0 3]", depths)
	}

	if _, err := New(token.Tokenize("(module (func (block (br 2))))")).Parse(); err == nil {
		t.Fatal("expected out of range depth to fail")
	}
}

func TestParse_Locals(t *testing.T) {
	mod := parse(t, `(module
		(func (param $a i32) (param i64) (local $x i32) (local i64 i64)
			(local.set $x (local.get $a))))`)

	body := mod.Code[0]
	if len(body.Locals) != 3 {
		t.Fatalf("locals = %d, want 3", len(body.Locals))
	}
	// local.get $a ; local.set $x ; end
	if body.Code[0].Imm.(uint32) != 0 || body.Code[1].Imm.(uint32) != 2 {
		t.Fatalf("code = %+v", body.Code)
	}
}
