package template

import (
	"fmt"
	"math"
	"time"

	"github.com/nao1215/chartbook/internal/dataset"
)

// Env is the evaluation context a safe expression sees: the document's
// datasets and the host-supplied props. Nothing else is reachable.
type Env struct {
	Store *dataset.Store
	Props map[string]any
}

// expr is one node of a parsed placeholder expression.
type expr interface {
	eval(env *Env) (any, error)
}

// literalExpr is a quoted string or numeric literal.
type literalExpr struct {
	v any
}

func (l literalExpr) eval(*Env) (any, error) { return l.v, nil }

// step is one path traversal: a .key access or a [index] access.
type step struct {
	key   string
	index int
	isKey bool
}

// pathExpr is a context traversal rooted at datasets or props.
type pathExpr struct {
	root  string
	steps []step
}

// callExpr is a call to one of the allowlisted functions.
type callExpr struct {
	name string
	args []expr
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// parseExpr parses one complete placeholder expression. Trailing
// tokens after a valid expression are a grammar violation, so `a b`
// or `count(d) extra` fail rather than silently dropping text.
func parseExpr(src string) (expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s after expression", ErrEvaluation, tok.kind)
	}
	return e, nil
}

func (p *parser) parsePrimary() (expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return literalExpr{v: tok.num}, nil
	case tokString:
		return literalExpr{v: tok.text}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			p.next()
			return p.parseCall(tok.text)
		}
		return p.parsePath(tok.text)
	default:
		return nil, fmt.Errorf("%w: expected an expression, got %s", ErrEvaluation, tok.kind)
	}
}

func (p *parser) parseCall(name string) (expr, error) {
	call := &callExpr{name: name}
	if p.peek().kind == tokRParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		// A bare identifier argument is shorthand for its name:
		// count(sales) means count("sales").
		if pe, ok := arg.(*pathExpr); ok && len(pe.steps) == 0 {
			arg = literalExpr{v: pe.root}
		}
		call.args = append(call.args, arg)

		switch p.next().kind {
		case tokComma:
		case tokRParen:
			return call, nil
		default:
			return nil, fmt.Errorf("%w: expected ',' or ')' in arguments of %s", ErrEvaluation, name)
		}
	}
}

func (p *parser) parsePath(root string) (expr, error) {
	path := &pathExpr{root: root}
	for {
		switch p.peek().kind {
		case tokDot:
			p.next()
			tok := p.next()
			if tok.kind != tokIdent {
				return nil, fmt.Errorf("%w: expected a name after '.', got %s", ErrEvaluation, tok.kind)
			}
			path.steps = append(path.steps, step{key: tok.text, isKey: true})
		case tokLBracket:
			p.next()
			tok := p.next()
			if tok.kind != tokNumber || tok.num != math.Trunc(tok.num) || tok.num < 0 {
				return nil, fmt.Errorf("%w: index must be a non-negative integer", ErrEvaluation)
			}
			if closing := p.next(); closing.kind != tokRBracket {
				return nil, fmt.Errorf("%w: expected ']', got %s", ErrEvaluation, closing.kind)
			}
			path.steps = append(path.steps, step{index: int(tok.num)})
		default:
			return path, nil
		}
	}
}

func (e *pathExpr) eval(env *Env) (any, error) {
	switch e.root {
	case "datasets":
		return e.evalDatasets(env)
	case "props":
		return e.evalProps(env)
	default:
		return nil, fmt.Errorf("%w: unknown identifier %q (only datasets and props may be referenced)", ErrEvaluation, e.root)
	}
}

// evalDatasets resolves datasets.<id>.data[row][col] to the cell's
// value. An out-of-range row or column yields the absent value (nil),
// mirroring how the canonical table reads missing cells.
func (e *pathExpr) evalDatasets(env *Env) (any, error) {
	if len(e.steps) == 0 || !e.steps[0].isKey {
		return nil, fmt.Errorf("%w: datasets must be followed by a dataset name", ErrEvaluation)
	}
	id := e.steps[0].key
	table, err := env.Store.Table(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}

	rest := e.steps[1:]
	if len(rest) != 3 || !rest[0].isKey || rest[0].key != "data" || rest[1].isKey || rest[2].isKey {
		return nil, fmt.Errorf("%w: dataset access must have the form datasets.%s.data[row][column]", ErrEvaluation, id)
	}
	return table.At(rest[1].index, rest[2].index).Value(), nil
}

// evalProps traverses the props mapping. Unlike dataset cells, a
// missing prop is an authoring mistake, so it fails the span instead
// of rendering the no-data placeholder.
func (e *pathExpr) evalProps(env *Env) (any, error) {
	if len(e.steps) == 0 || !e.steps[0].isKey {
		return nil, fmt.Errorf("%w: props must be followed by a name", ErrEvaluation)
	}
	name := e.steps[0].key
	cur, ok := env.Props[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown prop %q", ErrEvaluation, name)
	}
	for _, s := range e.steps[1:] {
		if s.isKey {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: props.%s: %q is not an object", ErrEvaluation, name, s.key)
			}
			cur, ok = m[s.key]
			if !ok {
				return nil, fmt.Errorf("%w: props.%s has no key %q", ErrEvaluation, name, s.key)
			}
			continue
		}
		list, ok := cur.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: props.%s: indexed value is not an array", ErrEvaluation, name)
		}
		if s.index >= len(list) {
			return nil, fmt.Errorf("%w: props.%s: index %d out of range", ErrEvaluation, name, s.index)
		}
		cur = list[s.index]
	}
	return scalar(cur)
}

// scalar rejects structured evaluation results. A placeholder must
// produce a displayable value, never an object or array.
func scalar(v any) (any, error) {
	switch v.(type) {
	case nil, string, float64, int, int64, bool, time.Time:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: result is not a scalar value", ErrEvaluation)
	}
}

func (c *callExpr) eval(env *Env) (any, error) {
	fn, ok := builtins[c.name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown function %q", ErrEvaluation, c.name)
	}
	args := make([]any, len(c.args))
	for i, a := range c.args {
		v, err := a.eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(env, args)
}
