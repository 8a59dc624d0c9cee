package parser

import (
	"fmt"

	"github.com/wippyai/script-bridge/wat/internal/ast"
	"github.com/wippyai/script-bridge/wat/internal/token"
)

func (p *Parser) parseModule() (*ast.Module, error) {
	p.mod = &ast.Module{}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("module"); err != nil {
		return nil, err
	}
	p.optionalName()

	if err := p.prescanNames(); err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t == nil {
			return nil, fmt.Errorf("unexpected end of input")
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		switch kw.Value {
		case "import":
			err = p.parseImport()
		case "func":
			err = p.parseFunc()
		case "export":
			err = p.parseExport()
		default:
			err = fmt.Errorf("line %d: unsupported module field: %s", kw.Line, kw.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if t := p.peek(); t != nil {
		return nil, fmt.Errorf("line %d: unexpected %q after module", t.Line, t.Value)
	}
	return p.mod, nil
}

// prescanNames assigns function indices before the main pass so calls may
// refer forward. Imported functions come first in the index space, in
// source order, followed by defined functions.
func (p *Parser) prescanNames() error {
	saved := p.pos
	defer func() { p.pos = saved }()

	var imports, funcs []string
	for p.pos < len(p.tokens) && p.tokens[p.pos].Type == token.LParen {
		p.pos++
		kw := p.next()
		if kw == nil {
			return fmt.Errorf("unexpected end of input")
		}
		switch kw.Value {
		case "import":
			// (import "m" "n" (func $name? ...))
			p.next()
			p.next()
			if p.peekKeyword("func") {
				p.pos += 2
				imports = append(imports, p.optionalName())
				p.skipList()
			}
		case "func":
			funcs = append(funcs, p.optionalName())
		}
		p.skipList()
	}

	p.imports = len(imports)
	for i, name := range append(imports, funcs...) {
		if name == "" {
			continue
		}
		if _, dup := p.funcMap[name]; dup {
			return fmt.Errorf("duplicate function name: %s", name)
		}
		p.funcMap[name] = uint32(i)
	}
	return nil
}

func (p *Parser) parseImport() error {
	mod, err := p.expect(token.String)
	if err != nil {
		return err
	}
	name, err := p.expect(token.String)
	if err != nil {
		return err
	}
	if !p.peekKeyword("func") {
		return fmt.Errorf("line %d: only function imports are supported", mod.Line)
	}
	p.pos += 2
	p.optionalName()

	var ft ast.FuncType
	if err := p.parseSignature(&ft, nil); err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}

	p.mod.Imports = append(p.mod.Imports, ast.Import{
		Module:  mod.Value,
		Name:    name.Value,
		TypeIdx: p.findOrAddType(ft),
	})
	return nil
}

func (p *Parser) parseExport() error {
	name, err := p.expect(token.String)
	if err != nil {
		return err
	}
	if !p.peekKeyword("func") {
		return fmt.Errorf("line %d: only function exports are supported", name.Line)
	}
	p.pos += 2
	idx, err := p.parseIdx(p.funcMap)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	p.mod.Exports = append(p.mod.Exports, ast.Export{Name: name.Value, Idx: idx})
	return nil
}

// parseSignature reads (param ...) and (result ...) lists. When locals is
// not nil, parameter names are recorded in it.
func (p *Parser) parseSignature(ft *ast.FuncType, locals map[string]uint32) error {
	for p.peekKeyword("param") {
		p.pos += 2
		if name := p.optionalName(); name != "" {
			vt, err := p.parseValType()
			if err != nil {
				return err
			}
			if locals != nil {
				locals[name] = uint32(len(ft.Params))
			}
			ft.Params = append(ft.Params, vt)
		} else {
			for p.peek() != nil && p.peek().Type == token.Ident {
				vt, err := p.parseValType()
				if err != nil {
					return err
				}
				ft.Params = append(ft.Params, vt)
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
	}

	for p.peekKeyword("result") {
		p.pos += 2
		for p.peek() != nil && p.peek().Type == token.Ident {
			vt, err := p.parseValType()
			if err != nil {
				return err
			}
			ft.Results = append(ft.Results, vt)
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseFunc() error {
	p.optionalName()
	funcIdx := uint32(p.imports + len(p.mod.Funcs))

	for p.peekKeyword("export") {
		p.pos += 2
		name, err := p.expect(token.String)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		p.mod.Exports = append(p.mod.Exports, ast.Export{Name: name.Value, Idx: funcIdx})
	}

	locals := make(map[string]uint32)
	var ft ast.FuncType
	if err := p.parseSignature(&ft, locals); err != nil {
		return err
	}

	var body ast.FuncBody
	for p.peekKeyword("local") {
		p.pos += 2
		if name := p.optionalName(); name != "" {
			vt, err := p.parseValType()
			if err != nil {
				return err
			}
			locals[name] = uint32(len(ft.Params) + len(body.Locals))
			body.Locals = append(body.Locals, vt)
		} else {
			for p.peek() != nil && p.peek().Type == token.Ident {
				vt, err := p.parseValType()
				if err != nil {
					return err
				}
				body.Locals = append(body.Locals, vt)
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
	}

	p.labels = p.labels[:0]
	code, err := p.parseInstrs(locals)
	if err != nil {
		return err
	}
	if t := p.peek(); t != nil && t.Type == token.Ident {
		return fmt.Errorf("line %d: unexpected %q outside a block", t.Line, t.Value)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}

	body.Code = append(code, ast.Instr{Opcode: ast.OpEnd})
	p.mod.Funcs = append(p.mod.Funcs, p.findOrAddType(ft))
	p.mod.Code = append(p.mod.Code, body)
	return nil
}
