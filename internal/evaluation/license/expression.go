// Package license parses SPDX license expressions into boolean trees and
// checks them against include/exclude policy lists.
package license

import (
	"fmt"
	"strings"
)

// Conjunction joins two sub-expressions of an SPDX expression.
type Conjunction string

const (
	And Conjunction = "AND"
	Or  Conjunction = "OR"
)

// Node is one node of a parsed SPDX expression. A leaf carries License and an
// internal node carries Conjunction plus both branches.
type Node struct {
	License     string
	Conjunction Conjunction
	Left        *Node
	Right       *Node
}

// IsLeaf reports whether the node is a single license id.
func (n *Node) IsLeaf() bool {
	return n != nil && n.License != ""
}

// String reconstructs the expression text, mainly for findings and tests.
func (n *Node) String() string {
	switch {
	case n == nil:
		return ""
	case n.IsLeaf():
		return n.License
	case n.Conjunction == And || n.Conjunction == Or:
		return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Conjunction, n.Right.String())
	default:
		return ""
	}
}

type parser struct {
	tokens []string
	pos    int
}

// Parse turns an SPDX expression string into its boolean tree. AND and OR
// keywords are case-insensitive, AND binds tighter than OR, and a WITH
// exception clause is folded into its leaf id.
func Parse(raw string) (*Node, error) {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty license expression")
	}
	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected token %q in license expression", p.tokens[p.pos])
	}
	return node, nil
}

func tokenize(raw string) []string {
	replaced := strings.NewReplacer("(", " ( ", ")", " ) ").Replace(raw)
	return strings.Fields(replaced)
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "OR") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Node{Conjunction: Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (*Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "AND") {
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Node{Conjunction: And, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (*Node, error) {
	tok := p.peek()
	switch {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of license expression")
	case tok == "(":
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis in license expression")
		}
		p.pos++
		return node, nil
	case tok == ")" || strings.EqualFold(tok, "AND") || strings.EqualFold(tok, "OR"):
		return nil, fmt.Errorf("unexpected token %q in license expression", tok)
	default:
		p.pos++
		id := tok
		if strings.EqualFold(p.peek(), "WITH") {
			p.pos++
			exception := p.peek()
			if exception == "" || exception == "(" || exception == ")" {
				return nil, fmt.Errorf("missing exception after WITH in license expression")
			}
			p.pos++
			id = id + " WITH " + exception
		}
		return &Node{License: id}, nil
	}
}

// Valid reports whether raw parses as an SPDX expression.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}
