package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Rule is a compiled expression. It is immutable and safe for concurrent use.
type Rule struct {
	src   string
	root  node
	names []string
}

// Compile parses src. An empty expression always evaluates to true.
func Compile(src string) (*Rule, error) {
	trimmed := strings.TrimSpace(src)
	rule := &Rule{src: trimmed}
	if trimmed == "" {
		return rule, nil
	}

	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return nil, fmt.Errorf("rules: unexpected %q at %d", tok.text, tok.pos)
	}
	rule.root = root

	seen := make(map[string]struct{})
	root.collect(seen)
	for name := range seen {
		rule.names = append(rule.names, name)
	}
	sort.Strings(rule.names)
	return rule, nil
}

// MustCompile is Compile for static expressions; it panics on error.
func MustCompile(src string) *Rule {
	rule, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return rule
}

// String returns the source expression.
func (r *Rule) String() string {
	return r.src
}

// Identifiers lists the referenced field names, sorted.
func (r *Rule) Identifiers() []string {
	return append([]string(nil), r.names...)
}

// Eval evaluates the rule against values keyed by identifier. Missing
// identifiers read as null.
func (r *Rule) Eval(values map[string]any) (bool, error) {
	if r.root == nil {
		return true, nil
	}
	return r.root.eval(values)
}

type node interface {
	eval(values map[string]any) (bool, error)
	collect(names map[string]struct{})
}

type operand struct {
	ident   string
	literal token
}

func (o operand) isIdent() bool { return o.ident != "" }

func (o operand) value(values map[string]any) any {
	if o.isIdent() {
		return values[o.ident]
	}
	return literalValue(o.literal)
}

type orNode struct{ left, right node }

func (n orNode) eval(values map[string]any) (bool, error) {
	ok, err := n.left.eval(values)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(values)
}

func (n orNode) collect(names map[string]struct{}) {
	n.left.collect(names)
	n.right.collect(names)
}

type andNode struct{ left, right node }

func (n andNode) eval(values map[string]any) (bool, error) {
	ok, err := n.left.eval(values)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(values)
}

func (n andNode) collect(names map[string]struct{}) {
	n.left.collect(names)
	n.right.collect(names)
}

type notNode struct{ inner node }

func (n notNode) eval(values map[string]any) (bool, error) {
	ok, err := n.inner.eval(values)
	return !ok, err
}

func (n notNode) collect(names map[string]struct{}) { n.inner.collect(names) }

type truthNode struct{ ident string }

func (n truthNode) eval(values map[string]any) (bool, error) {
	return truthy(values[n.ident]), nil
}

func (n truthNode) collect(names map[string]struct{}) { names[n.ident] = struct{}{} }

type compareNode struct {
	left, right operand
	negate      bool
}

func (n compareNode) eval(values map[string]any) (bool, error) {
	equal := equals(n.left, n.right, values)
	return equal != n.negate, nil
}

func (n compareNode) collect(names map[string]struct{}) {
	for _, side := range []operand{n.left, n.right} {
		if side.isIdent() {
			names[side.ident] = struct{}{}
		}
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errors.New("rules: missing closing ')'")
		}
		return inner, nil
	}

	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	tok, ok := p.peek()
	if !ok || (tok.kind != tokEq && tok.kind != tokNeq) {
		if !left.isIdent() {
			return nil, fmt.Errorf("rules: literal %q needs a comparison", left.literal.text)
		}
		return truthNode{ident: left.ident}, nil
	}
	p.pos++
	right, err := p.operand()
	if err != nil {
		return nil, err
	}
	return compareNode{left: left, right: right, negate: tok.kind == tokNeq}, nil
}

func (p *parser) operand() (operand, error) {
	tok, ok := p.peek()
	if !ok {
		return operand{}, errors.New("rules: unexpected end of expression")
	}
	switch tok.kind {
	case tokIdent:
		p.pos++
		return operand{ident: tok.text}, nil
	case tokString, tokNumber, tokBool, tokNull:
		p.pos++
		return operand{literal: tok}, nil
	default:
		return operand{}, fmt.Errorf("rules: expected a field or literal at %d, got %q", tok.pos, tok.text)
	}
}
