package parser

import (
	"fmt"

	"github.com/wippyai/script-bridge/wat/internal/ast"
	"github.com/wippyai/script-bridge/wat/internal/opcode"
	"github.com/wippyai/script-bridge/wat/internal/token"
)

// parseInstrs reads instructions in folded or flat form until a closing
// paren or a flat block terminator (end, else), which it leaves unread.
func (p *Parser) parseInstrs(locals map[string]uint32) ([]ast.Instr, error) {
	var instrs []ast.Instr

	for {
		t := p.peek()
		if t == nil || t.Type == token.RParen {
			return instrs, nil
		}

		if t.Type == token.LParen {
			p.next()
			folded, err := p.parseFolded(locals)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, folded...)
			continue
		}

		if t.Type != token.Ident {
			return nil, fmt.Errorf("line %d: expected instruction, got %v", t.Line, t.Type)
		}
		if t.Value == "end" || t.Value == "else" {
			return instrs, nil
		}

		p.next()
		flat, err := p.parseFlat(t, locals)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, flat...)
	}
}

// parseFolded parses one parenthesised instruction; the opening paren has
// been consumed.
func (p *Parser) parseFolded(locals map[string]uint32) ([]ast.Instr, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	switch t.Value {
	case "block", "loop":
		op := ast.OpBlock
		if t.Value == "loop" {
			op = ast.OpLoop
		}
		p.pushLabel(p.optionalName())
		bt, err := p.parseBlockType()
		if err != nil {
			return nil, err
		}
		body, err := p.parseInstrs(locals)
		if err != nil {
			return nil, err
		}
		p.popLabel()
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		out := append([]ast.Instr{{Opcode: op, Imm: bt}}, body...)
		return append(out, ast.Instr{Opcode: ast.OpEnd}), nil

	case "if":
		return p.parseFoldedIf(locals)
	}

	ins, err := p.parsePlain(t, locals)
	if err != nil {
		return nil, err
	}

	var out []ast.Instr
	for p.peek() != nil && p.peek().Type == token.LParen {
		p.next()
		operand, err := p.parseFolded(locals)
		if err != nil {
			return nil, err
		}
		out = append(out, operand...)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return append(out, ins), nil
}

// parseFoldedIf parses (if $label? (result t)? cond* (then ...) (else ...)?).
func (p *Parser) parseFoldedIf(locals map[string]uint32) ([]ast.Instr, error) {
	label := p.optionalName()
	bt, err := p.parseBlockType()
	if err != nil {
		return nil, err
	}

	var out []ast.Instr
	for p.peek() != nil && p.peek().Type == token.LParen && !p.peekKeyword("then") {
		p.next()
		cond, err := p.parseFolded(locals)
		if err != nil {
			return nil, err
		}
		out = append(out, cond...)
	}
	out = append(out, ast.Instr{Opcode: ast.OpIf, Imm: bt})

	if !p.peekKeyword("then") {
		return nil, fmt.Errorf("if without then")
	}
	p.pos += 2
	p.pushLabel(label)
	thenBody, err := p.parseInstrs(locals)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	out = append(out, thenBody...)

	if p.peekKeyword("else") {
		p.pos += 2
		elseBody, err := p.parseInstrs(locals)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		out = append(out, ast.Instr{Opcode: ast.OpElse})
		out = append(out, elseBody...)
	}
	p.popLabel()

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return append(out, ast.Instr{Opcode: ast.OpEnd}), nil
}

// parseFlat parses a flat instruction whose name t has been consumed.
func (p *Parser) parseFlat(t *token.Token, locals map[string]uint32) ([]ast.Instr, error) {
	switch t.Value {
	case "block", "loop", "if":
		op := ast.OpBlock
		switch t.Value {
		case "loop":
			op = ast.OpLoop
		case "if":
			op = ast.OpIf
		}
		p.pushLabel(p.optionalName())
		bt, err := p.parseBlockType()
		if err != nil {
			return nil, err
		}
		body, err := p.parseInstrs(locals)
		if err != nil {
			return nil, err
		}
		out := append([]ast.Instr{{Opcode: op, Imm: bt}}, body...)

		if op == ast.OpIf && p.peek() != nil && p.peek().Value == "else" {
			p.next()
			p.optionalName()
			elseBody, err := p.parseInstrs(locals)
			if err != nil {
				return nil, err
			}
			out = append(out, ast.Instr{Opcode: ast.OpElse})
			out = append(out, elseBody...)
		}

		if err := p.expectKeyword("end"); err != nil {
			return nil, err
		}
		p.optionalName()
		p.popLabel()
		return append(out, ast.Instr{Opcode: ast.OpEnd}), nil
	}

	ins, err := p.parsePlain(t, locals)
	if err != nil {
		return nil, err
	}
	return []ast.Instr{ins}, nil
}

// parsePlain parses the immediate of a non-structured instruction.
func (p *Parser) parsePlain(t *token.Token, locals map[string]uint32) (ast.Instr, error) {
	info, ok := opcode.Lookup(t.Value)
	if !ok {
		return ast.Instr{}, fmt.Errorf("line %d: unknown instruction: %s", t.Line, t.Value)
	}
	ins := ast.Instr{Opcode: info.Opcode}

	switch info.Imm {
	case opcode.ImmLocal:
		idx, err := p.parseIdx(locals)
		if err != nil {
			return ins, err
		}
		ins.Imm = idx
	case opcode.ImmFunc:
		idx, err := p.parseIdx(p.funcMap)
		if err != nil {
			return ins, err
		}
		ins.Imm = idx
	case opcode.ImmLabel:
		depth, err := p.parseLabelRef()
		if err != nil {
			return ins, err
		}
		ins.Imm = depth
	case opcode.ImmI32:
		v, err := p.parseInt(32)
		if err != nil {
			return ins, err
		}
		ins.Imm = int32(v)
	case opcode.ImmI64:
		v, err := p.parseInt(64)
		if err != nil {
			return ins, err
		}
		ins.Imm = v
	}
	return ins, nil
}

func (p *Parser) parseLabelRef() (uint32, error) {
	t := p.peek()
	if t == nil {
		return 0, fmt.Errorf("expected label")
	}
	if t.Type == token.Ident {
		p.next()
		depth, ok := p.resolveLabel(t.Value)
		if !ok || t.Value == "" {
			return 0, fmt.Errorf("line %d: unknown label: %s", t.Line, t.Value)
		}
		return depth, nil
	}
	depth, err := p.parseU32()
	if err != nil {
		return 0, err
	}
	if int(depth) > len(p.labels) {
		return 0, fmt.Errorf("line %d: label depth %d out of range", t.Line, depth)
	}
	return depth, nil
}

// parseBlockType reads an optional single (result t).
func (p *Parser) parseBlockType() (byte, error) {
	if !p.peekKeyword("result") {
		return ast.BlockTypeEmpty, nil
	}
	p.pos += 2
	vt, err := p.parseValType()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t != nil && t.Type == token.Ident {
		return 0, fmt.Errorf("line %d: multi-value blocks are not supported", t.Line)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return 0, err
	}
	return byte(vt), nil
}
