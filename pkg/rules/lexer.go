package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src    string
	pos    int
	tokens []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) emit(kind tokenKind, text string, start int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: start})
}

func (l *lexer) pair(start int, second byte, kind tokenKind, text string) error {
	if l.pos+1 >= len(l.src) || l.src[l.pos+1] != second {
		return fmt.Errorf("rules: unexpected %q at %d; use %q", l.src[l.pos], start, text)
	}
	l.pos += 2
	l.emit(kind, text, start)
	return nil
}

func (l *lexer) next() error {
	start := l.pos
	switch ch := l.src[l.pos]; ch {
	case '(':
		l.pos++
		l.emit(tokLParen, "(", start)
	case ')':
		l.pos++
		l.emit(tokRParen, ")", start)
	case '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			l.emit(tokNeq, "!=", start)
			return nil
		}
		l.pos++
		l.emit(tokNot, "!", start)
	case '=':
		return l.pair(start, '=', tokEq, "==")
	case '&':
		return l.pair(start, '&', tokAnd, "&&")
	case '|':
		return l.pair(start, '|', tokOr, "||")
	case '"', '\'':
		return l.quoted(ch)
	default:
		l.word()
	}
	return nil
}

func (l *lexer) quoted(quote byte) error {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		l.pos++
		switch {
		case ch == '\\' && l.pos < len(l.src):
			b.WriteByte(l.src[l.pos])
			l.pos++
		case ch == quote:
			l.emit(tokString, b.String(), start)
			return nil
		default:
			b.WriteByte(ch)
		}
	}
	return errors.New("rules: unterminated string literal")
}

func (l *lexer) word() {
	start := l.pos
	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) && !isOperator(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	switch strings.ToLower(text) {
	case "true", "false":
		l.emit(tokBool, strings.ToLower(text), start)
	case "null", "nil":
		l.emit(tokNull, "null", start)
	default:
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			l.emit(tokNumber, text, start)
			return
		}
		l.emit(tokIdent, text, start)
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isOperator(ch byte) bool {
	switch ch {
	case '(', ')', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}
