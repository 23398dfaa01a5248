// Command qline-calc is a small colourful calculator REPL exercising
// the editor: syntax colouring, autocomplete, history and multi-line
// continuation for unbalanced parentheses.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/kobzarvs/qline"
	"github.com/kobzarvs/qline/internal/config"
	"github.com/kobzarvs/qline/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "qline-calc:", err)
		os.Exit(1)
	}
}

// Semantic palette indices reported by the syntax callback.
const (
	colDefault = iota
	colNumber
	colOperator
	colParen
	colFunction
	colIdentifier
)

var defaultPalette = []int{
	colDefault:    qline.DefaultColor,
	colNumber:     qline.Ansi216(1, 4, 2),
	colOperator:   qline.Ansi216(5, 3, 1),
	colParen:      qline.Ansi216(2, 3, 5),
	colFunction:   qline.Ansi216(4, 2, 5),
	colIdentifier: qline.Ansi216(5, 1, 1),
}

var words = []string{"sin", "cos", "tan", "pi", "e", "help", "quit"}

func run() error {
	if path := os.Getenv("QLINE_LOG_FILE"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
		defer logger.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ed := qline.New("calc> ")
	defer ed.Close()

	ed.SetTabWidth(cfg.Editor.TabWidth)
	ed.SetHistoryLength(cfg.Editor.HistoryLength)

	palette := defaultPalette
	if userPalette, err := cfg.Palette(); err != nil {
		return err
	} else if len(userPalette) > 0 {
		palette = userPalette
	}
	if err := ed.SetPalette(palette); err != nil {
		return err
	}

	ed.SetSyntaxColor(colorize, nil)
	ed.SetAutocomplete(complete, nil)
	ed.SetMultiline(needMore, nil, "...> ")

	fmt.Println("qline calc - type help, or quit")

	for {
		line, err := ed.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "quit":
			return nil
		case "help":
			printHelp()
			continue
		}

		ed.AddHistory(line)
		result, err := eval(input)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("= %.15g\n", result)
	}
}

func printHelp() {
	fmt.Println("Examples:")
	fmt.Println("  1 + 2*3")
	fmt.Println("  (1 + 2) * 3")
	fmt.Println("  2^8")
	fmt.Println("  sin(pi/2)")
	fmt.Println()
	fmt.Println("Commands: help, quit")
}

// needMore keeps the editor in multi-line mode while parentheses are
// unbalanced.
func needMore(buf string, _ any) bool {
	depth := 0
	for _, c := range buf {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

// complete finishes the word-ish token at the end of the buffer.
func complete(buf string, _ any, index *int) (string, bool) {
	start := len(buf)
	for start > 0 && isIdentCont(buf[start-1]) {
		start--
	}
	partial := buf[start:]
	if partial == "" {
		return "", false
	}
	for i := *index; i < len(words); i++ {
		if strings.HasPrefix(words[i], partial) && len(words[i]) > len(partial) {
			*index = i + 1
			return words[i][len(partial):], true
		}
	}
	return "", false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// colorize is a hand-rolled lexer reporting one span per token.
func colorize(buf string, _ any, offset int) (qline.ColorSpan, bool) {
	if offset >= len(buf) {
		return qline.ColorSpan{}, false
	}
	c := buf[offset]

	if isSpace(c) {
		i := offset + 1
		for i < len(buf) && isSpace(buf[i]) {
			i++
		}
		return qline.ColorSpan{ByteEnd: i, Color: colDefault}, true
	}

	if c == '(' || c == ')' {
		return qline.ColorSpan{ByteEnd: offset + 1, Color: colParen}, true
	}

	if strings.IndexByte("+-*/^,", c) >= 0 {
		return qline.ColorSpan{ByteEnd: offset + 1, Color: colOperator}, true
	}

	if isDigit(c) || c == '.' {
		i := offset
		sawDigit := false
		for i < len(buf) && isDigit(buf[i]) {
			i++
			sawDigit = true
		}
		if i < len(buf) && buf[i] == '.' {
			i++
			for i < len(buf) && isDigit(buf[i]) {
				i++
				sawDigit = true
			}
		}
		if !sawDigit {
			return qline.ColorSpan{ByteEnd: offset + 1, Color: colDefault}, true
		}
		if i < len(buf) && (buf[i] == 'e' || buf[i] == 'E') {
			j := i + 1
			if j < len(buf) && (buf[j] == '+' || buf[j] == '-') {
				j++
			}
			expDigit := false
			for j < len(buf) && isDigit(buf[j]) {
				j++
				expDigit = true
			}
			if expDigit {
				i = j
			}
		}
		return qline.ColorSpan{ByteEnd: i, Color: colNumber}, true
	}

	if isIdentStart(c) {
		i := offset + 1
		for i < len(buf) && isIdentCont(buf[i]) {
			i++
		}
		color := colIdentifier
		switch buf[offset:i] {
		case "sin", "cos", "tan", "pi", "e", "help", "quit":
			color = colFunction
		}
		return qline.ColorSpan{ByteEnd: i, Color: color}, true
	}

	return qline.ColorSpan{ByteEnd: offset + 1, Color: colDefault}, true
}

// Expression parser: expr → term (± term)*, term → power (*/ power)*,
// power → unary (^ power)?, unary → ± unary | primary.
type parser struct {
	s   string
	pos int
}

func eval(s string) (float64, error) {
	p := &parser{s: s}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return 0, fmt.Errorf("unexpected %q", p.s[p.pos:])
	}
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

func (p *parser) match(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.match('+'):
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v += rhs
		case p.match('-'):
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) term() (float64, error) {
	v, err := p.power()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.match('*'):
			rhs, err := p.power()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case p.match('/'):
			rhs, err := p.power()
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) power() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.match('^') {
		rhs, err := p.power() // right-associative
		if err != nil {
			return 0, err
		}
		return math.Pow(v, rhs), nil
	}
	return v, nil
}

func (p *parser) unary() (float64, error) {
	if p.match('+') {
		return p.unary()
	}
	if p.match('-') {
		v, err := p.unary()
		return -v, err
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	p.skipSpace()
	if p.match('(') {
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if !p.match(')') {
			return 0, fmt.Errorf("missing ')'")
		}
		return v, nil
	}

	if p.pos < len(p.s) && isIdentStart(p.s[p.pos]) {
		start := p.pos
		for p.pos < len(p.s) && isIdentCont(p.s[p.pos]) {
			p.pos++
		}
		switch name := p.s[start:p.pos]; name {
		case "pi":
			return math.Pi, nil
		case "e":
			return math.E, nil
		case "sin", "cos", "tan":
			if !p.match('(') {
				return 0, fmt.Errorf("%s expects '('", name)
			}
			arg, err := p.expr()
			if err != nil {
				return 0, err
			}
			if !p.match(')') {
				return 0, fmt.Errorf("missing ')' after %s", name)
			}
			switch name {
			case "sin":
				return math.Sin(arg), nil
			case "cos":
				return math.Cos(arg), nil
			}
			return math.Tan(arg), nil
		default:
			return 0, fmt.Errorf("unknown identifier %q", name)
		}
	}

	return p.number()
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && (isDigit(p.s[p.pos]) || p.s[p.pos] == '.') {
		p.pos++
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		j := p.pos + 1
		if j < len(p.s) && (p.s[j] == '+' || p.s[j] == '-') {
			j++
		}
		k := j
		for k < len(p.s) && isDigit(p.s[k]) {
			k++
		}
		if k > j {
			p.pos = k
		}
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected number")
	}
	var v float64
	if _, err := fmt.Sscanf(p.s[start:p.pos], "%g", &v); err != nil {
		return 0, fmt.Errorf("bad number %q", p.s[start:p.pos])
	}
	return v, nil
}
