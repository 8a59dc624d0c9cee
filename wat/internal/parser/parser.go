package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/script-bridge/wat/internal/ast"
	"github.com/wippyai/script-bridge/wat/internal/token"
)

type Parser struct {
	mod     *ast.Module
	funcMap map[string]uint32
	tokens  []token.Token
	labels  []string
	pos     int
	imports int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		funcMap: make(map[string]uint32),
	}
}

func (p *Parser) Parse() (*ast.Module, error) {
	return p.parseModule()
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

// peekKeyword reports whether the next tokens are '(' followed by kw.
func (p *Parser) peekKeyword(kw string) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos].Type == token.LParen &&
		p.tokens[p.pos+1].Type == token.Ident &&
		p.tokens[p.pos+1].Value == kw
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.Type != typ {
		return nil, fmt.Errorf("line %d: expected %v, got %q", t.Line, typ, t.Value)
	}
	return t, nil
}

func (p *Parser) expectKeyword(kw string) error {
	t, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if t.Value != kw {
		return fmt.Errorf("line %d: expected '%s', got %q", t.Line, kw, t.Value)
	}
	return nil
}

// skipList skips the rest of the current parenthesised list, including its
// closing paren.
func (p *Parser) skipList() {
	depth := 1
	for p.pos < len(p.tokens) && depth > 0 {
		switch p.tokens[p.pos].Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		}
		p.pos++
	}
}

func (p *Parser) optionalName() string {
	if t := p.peek(); t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
		return t.Value
	}
	return ""
}

func (p *Parser) pushLabel(name string) {
	p.labels = append(p.labels, name)
}

func (p *Parser) popLabel() {
	if len(p.labels) > 0 {
		p.labels = p.labels[:len(p.labels)-1]
	}
}

func (p *Parser) resolveLabel(name string) (uint32, bool) {
	for i := len(p.labels) - 1; i >= 0; i-- {
		if p.labels[i] == name {
			return uint32(len(p.labels) - 1 - i), true
		}
	}
	return 0, false
}

func (p *Parser) parseValType() (ast.ValType, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return 0, err
	}
	switch t.Value {
	case "i32":
		return ast.ValTypeI32, nil
	case "i64":
		return ast.ValTypeI64, nil
	case "f32":
		return ast.ValTypeF32, nil
	case "f64":
		return ast.ValTypeF64, nil
	default:
		return 0, fmt.Errorf("line %d: unknown value type: %s", t.Line, t.Value)
	}
}

// parseIdx reads a $name resolved through names, or a plain number.
func (p *Parser) parseIdx(names map[string]uint32) (uint32, error) {
	t := p.peek()
	if t == nil {
		return 0, fmt.Errorf("expected index")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
		if idx, ok := names[t.Value]; ok {
			return idx, nil
		}
		return 0, fmt.Errorf("line %d: unknown identifier: %s", t.Line, t.Value)
	}
	return p.parseU32()
}

func (p *Parser) parseU32() (uint32, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(t.Value, "_", ""), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid u32: %s", t.Line, t.Value)
	}
	return uint32(v), nil
}

func (p *Parser) parseInt(bits int) (int64, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	s := strings.ReplaceAll(t.Value, "_", "")
	if v, err := strconv.ParseInt(s, 0, bits); err == nil {
		return v, nil
	}
	// Unsigned spellings wrap, as in the text format.
	u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid i%d: %s", t.Line, bits, t.Value)
	}
	if bits == 32 {
		return int64(int32(uint32(u))), nil
	}
	return int64(u), nil
}

func (p *Parser) findOrAddType(ft ast.FuncType) uint32 {
	for i, t := range p.mod.Types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	idx := uint32(len(p.mod.Types))
	p.mod.Types = append(p.mod.Types, ft)
	return idx
}
