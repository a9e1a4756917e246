// Package calculator provides the "calculate" tool: a restricted arithmetic
// evaluator. Input is parsed by a small recursive-descent parser; nothing is
// ever executed as code.
//
// Grammar (lowest to highest precedence):
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "//" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | "(" expr ")"
//
// "×" and "÷" are accepted as aliases for "*" and "/". Exponentiation is
// right associative and binds tighter than a leading sign, so -2**2 is -4.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/reactloop/tool"
)

// Name is the action name of the calculator tool.
const Name = "calculate"

// ErrDivisionByZero is returned for x/0, x//0 and x%0.
var ErrDivisionByZero = errors.New("division by zero")

// Evaluate parses and evaluates an arithmetic expression.
func Evaluate(expr string) (float64, error) {
	toks, err := lex(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result out of range")
	}
	return v, nil
}

// Format renders a result without trailing zeros: 345, 9.333333333333334.
func Format(v float64) string {
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tool exposes Evaluate as a tool.Tool.
type Tool struct{}

// New returns the calculator tool.
func New() *Tool { return &Tool{} }

// Name implements tool.Tool.
func (t *Tool) Name() string { return Name }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Evaluate an arithmetic expression (+ - * / // % ** and parentheses), e.g. 4 * 7 / 3"
}

// Call implements tool.Tool.
func (t *Tool) Call(_ context.Context, input string) (string, error) {
	v, err := Evaluate(input)
	if err != nil {
		return "", tool.NewToolError(Name, err.Error(), tool.CodeInvalidInput)
	}
	return Format(v), nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	src = strings.NewReplacer("×", "*", "÷", "/").Replace(src)
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case (c >= '0' && c <= '9') || c == '.':
			start := i
			for i < len(src) && ((src[i] >= '0' && src[i] <= '9') || src[i] == '.' || src[i] == '_') {
				i++
			}
			// exponent part: 1e3, 2.5E-2
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && src[j] >= '0' && src[j] <= '9' {
					i = j
					for i < len(src) && src[i] >= '0' && src[i] <= '9' {
						i++
					}
				}
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", text)
			}
			toks = append(toks, token{kind: tokNum, text: text, num: n, pos: start})
		case c == '*' || c == '/':
			if i+1 < len(src) && src[i+1] == c {
				toks = append(toks, token{kind: tokOp, text: src[i : i+2], pos: i})
				i += 2
				continue
			}
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '+' || c == '-' || c == '%':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", rune(src[i]), i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.isOp("*", "/", "//", "%") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		case "//":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left = math.Floor(left / right)
		case "%":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			// result takes the sign of the divisor
			left -= right * math.Floor(left/right)
		}
	}
	return left, nil
}

func (p *parser) unary() (float64, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.isOp("**") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return 0, err
		}
		if base == 0 && exp < 0 {
			return 0, ErrDivisionByZero
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return t.num, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.peek().kind != tokRParen {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.peek().pos)
		}
		p.next()
		return v, nil
	case tokEOF:
		return 0, errors.New("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
