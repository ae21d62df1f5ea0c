package template

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokDot
	tokComma
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokDot:
		return "'.'"
	case tokComma:
		return "','"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	default:
		return "']'"
	}
}

type token struct {
	kind tokenKind
	text string
	num  float64
}

// lex converts one placeholder expression into tokens. Anything the
// grammar has no token for (operators, braces, semicolons) fails
// here, which is what keeps constructs like `1+1` or `a=b` out of safe
// mode before the parser ever sees them.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '.':
			toks = append(toks, token{kind: tokDot})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBracket})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBracket})
			i++
		case c == '\'' || c == '"':
			lit, rest, err := lexString(src[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: lit})
			i = len(src) - len(rest)
		case c == '-' || c >= '0' && c <= '9':
			lit, rest, err := lexNumber(src[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNumber, num: lit})
			i = len(src) - len(rest)
		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			if !isIdentStart(r) {
				return nil, fmt.Errorf("%w: unexpected character %q", ErrEvaluation, string(r))
			}
			start := i
			i += size
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i]})
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

// lexString consumes a single- or double-quoted literal and returns
// the unquoted text plus the unconsumed remainder.
func lexString(src string) (string, string, error) {
	quote := src[0]
	var b strings.Builder
	for i := 1; i < len(src); i++ {
		c := src[i]
		switch c {
		case quote:
			return b.String(), src[i+1:], nil
		case '\\':
			if i+1 >= len(src) {
				return "", "", fmt.Errorf("%w: unterminated string literal", ErrEvaluation)
			}
			i++
			b.WriteByte(src[i])
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("%w: unterminated string literal", ErrEvaluation)
}

// lexNumber consumes a numeric literal, optional leading minus and
// fraction included, and returns the unconsumed remainder.
func lexNumber(src string) (float64, string, error) {
	end := 0
	if src[end] == '-' {
		end++
	}
	for end < len(src) && (src[end] >= '0' && src[end] <= '9' || src[end] == '.') {
		end++
	}
	f, err := strconv.ParseFloat(src[:end], 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid number %q", ErrEvaluation, src[:end])
	}
	return f, src[end:], nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
