/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenName          // #name placeholder
	tokenValue         // :value placeholder
	tokenIdent         // bare attribute or function name
	tokenOperator      // = <> < <= > >=
	tokenAND
	tokenOR
	tokenNOT
	tokenBETWEEN
	tokenLParen
	tokenRParen
	tokenComma
)

var keywords = map[string]tokenType{
	"AND":     tokenAND,
	"OR":      tokenOR,
	"NOT":     tokenNOT,
	"BETWEEN": tokenBETWEEN,
}

type token struct {
	typ tokenType
	lit string
	pos int
}

func lex(input string) ([]token, error) {
	var tokens []token
	for pos := 0; pos < len(input); {
		r, width := utf8.DecodeRuneInString(input[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += width
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "(", pos})
			pos++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")", pos})
			pos++
		case r == ',':
			tokens = append(tokens, token{tokenComma, ",", pos})
			pos++
		case r == '=':
			tokens = append(tokens, token{tokenOperator, "=", pos})
			pos++
		case r == '<' || r == '>':
			op := string(r)
			if pos+1 < len(input) && (input[pos+1] == '=' || (r == '<' && input[pos+1] == '>')) {
				op += string(input[pos+1])
			}
			tokens = append(tokens, token{tokenOperator, op, pos})
			pos += len(op)
		case r == '#' || r == ':':
			end := scanWord(input, pos+1)
			if end == pos+1 {
				return nil, fmt.Errorf("empty placeholder at offset %d", pos)
			}
			typ := tokenName
			if r == ':' {
				typ = tokenValue
			}
			tokens = append(tokens, token{typ, input[pos:end], pos})
			pos = end
		case isWordChar(r):
			end := scanWord(input, pos)
			word := input[pos:end]
			if kw, ok := keywords[strings.ToUpper(word)]; ok {
				tokens = append(tokens, token{kw, word, pos})
			} else {
				tokens = append(tokens, token{tokenIdent, word, pos})
			}
			pos = end
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, pos)
		}
	}
	return append(tokens, token{tokenEOF, "", len(input)}), nil
}

func isWordChar(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func scanWord(input string, pos int) int {
	for pos < len(input) {
		r, width := utf8.DecodeRuneInString(input[pos:])
		if !isWordChar(r) {
			break
		}
		pos += width
	}
	return pos
}

// Node is a parsed condition expression.
type Node interface {
	node()
}

// BinaryNode joins two conditions with AND or OR.
type BinaryNode struct {
	Operator string
	Left     Node
	Right    Node
}

// NotNode negates a condition.
type NotNode struct {
	Operand Node
}

// ComparisonNode compares an attribute path with a value placeholder.
type ComparisonNode struct {
	Path     string // "#name" placeholder or bare attribute name
	Operator string
	Value    string // ":value" placeholder
}

// BetweenNode tests Lower <= path <= Upper.
type BetweenNode struct {
	Path  string
	Lower string
	Upper string
}

// FunctionNode is a function call on an attribute path, with an optional value
// placeholder argument (begins_with).
type FunctionNode struct {
	Function string
	Path     string
	Arg      string
}

func (*BinaryNode) node()     {}
func (*NotNode) node()        {}
func (*ComparisonNode) node() {}
func (*BetweenNode) node()    {}
func (*FunctionNode) node()   {}

// Parse parses a condition expression made of comparisons, BETWEEN, attribute_exists,
// attribute_not_exists and begins_with calls combined with AND, OR, NOT and
// parentheses. This covers every filter BuildFilter emits and the usual key
// conditions.
func Parse(input string) (Node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().typ == tokenEOF {
		return nil, fmt.Errorf("empty expression")
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokenEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", t.lit, t.pos)
	}
	return n, nil
}

// Walk calls fn for n and every node below it, depth first, left to right.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch n := n.(type) {
	case *BinaryNode:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *NotNode:
		Walk(n.Operand, fn)
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ tokenType, what string) (token, error) {
	t := p.next()
	if t.typ != typ {
		return t, fmt.Errorf("expected %s at offset %d, got %q", what, t.pos, t.lit)
	}
	return t, nil
}

// Precedence: OR < AND < NOT < condition

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenOR {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Operator: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenAND {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Operator: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().typ == tokenNOT {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotNode{Operand: operand}, nil
	}
	return p.parseCondition()
}

func (p *parser) parseCondition() (Node, error) {
	t := p.next()
	switch t.typ {
	case tokenLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, "')'"); err != nil {
			return nil, err
		}
		return n, nil

	case tokenIdent:
		if p.peek().typ == tokenLParen {
			return p.parseFunction(t)
		}
		return p.parseComparison(t)

	case tokenName:
		return p.parseComparison(t)
	}
	return nil, fmt.Errorf("unexpected %q at offset %d", t.lit, t.pos)
}

func (p *parser) parseComparison(path token) (Node, error) {
	if p.peek().typ == tokenBETWEEN {
		p.next()
		lower, err := p.expect(tokenValue, "value placeholder")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenAND, "AND"); err != nil {
			return nil, err
		}
		upper, err := p.expect(tokenValue, "value placeholder")
		if err != nil {
			return nil, err
		}
		return &BetweenNode{Path: path.lit, Lower: lower.lit, Upper: upper.lit}, nil
	}

	op, err := p.expect(tokenOperator, "comparison operator")
	if err != nil {
		return nil, err
	}
	val, err := p.expect(tokenValue, "value placeholder")
	if err != nil {
		return nil, err
	}
	return &ComparisonNode{Path: path.lit, Operator: op.lit, Value: val.lit}, nil
}

func (p *parser) parseFunction(fn token) (Node, error) {
	p.next() // (
	path := p.next()
	if path.typ != tokenName && path.typ != tokenIdent {
		return nil, fmt.Errorf("expected attribute path at offset %d, got %q", path.pos, path.lit)
	}
	n := &FunctionNode{Function: fn.lit, Path: path.lit}

	switch fn.lit {
	case "attribute_exists", "attribute_not_exists":
	case "begins_with":
		if _, err := p.expect(tokenComma, "','"); err != nil {
			return nil, err
		}
		arg, err := p.expect(tokenValue, "value placeholder")
		if err != nil {
			return nil, err
		}
		n.Arg = arg.lit
	default:
		return nil, fmt.Errorf("unsupported function %q at offset %d", fn.lit, fn.pos)
	}

	if _, err := p.expect(tokenRParen, "')'"); err != nil {
		return nil, err
	}
	return n, nil
}
