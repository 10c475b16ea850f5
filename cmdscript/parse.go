package cmdscript

import (
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
)

// ArgKind distinguishes how a Command's positional argument was written in
// the script, so the caller can coerce it to the right Go type.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgNumber
	ArgBool
)

// Arg is one positional argument to a Command.
type Arg struct {
	Kind ArgKind
	Str  string
	Num  float64
	Bool bool
}

// Command is one parsed line: a command name (selects an orchestrator entry
// point by name, SPEC_FULL.md §4 A5) plus its positional arguments.
type Command struct {
	Name string
	Args []Arg
	Line int
}

type parser struct {
	tokens chan Item
	token  Item
	line   int
}

// Parse reads every command in r, one per non-blank, non-comment line.
// A lexer error is returned as a plain error (no os.Exit/log.Fatal — a
// command script error is a CONFIGURATION_ERROR surfaced before any CORE
// mutation, spec.md §7).
func Parse(r io.Reader) ([]Command, error) {
	bytes, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cmdscript: %w", err)
	}

	p := &parser{tokens: NewLexer(string(bytes)), line: 1}
	p.next()

	var cmds []Command
	for {
		for p.token.Typ == Newline {
			p.next()
		}
		if p.token.Typ == EOF {
			break
		}
		if p.token.Typ == Error {
			return nil, fmt.Errorf("cmdscript: %s", p.token.Val)
		}
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (p *parser) next() {
	p.token = <-p.tokens
	if p.token.Typ == Newline {
		p.line++
	}
}

func (p *parser) command() (Command, error) {
	if p.token.Typ != Id {
		return Command{}, fmt.Errorf("cmdscript: expected a command name at line %d, got %v", p.line, p.token)
	}
	cmd := Command{Name: p.token.Val, Line: p.line}
	p.next()

	for p.token.Typ == Id || p.token.Typ == Number || p.token.Typ == Bool {
		arg, err := p.arg()
		if err != nil {
			return Command{}, err
		}
		cmd.Args = append(cmd.Args, arg)
	}

	if p.token.Typ != Newline && p.token.Typ != EOF {
		return Command{}, fmt.Errorf("cmdscript: unexpected token %v at line %d", p.token, p.line)
	}
	return cmd, nil
}

func (p *parser) arg() (Arg, error) {
	tok := p.token
	defer p.next()

	switch tok.Typ {
	case Number:
		n, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			return Arg{}, fmt.Errorf("cmdscript: bad number %q at line %d: %w", tok.Val, p.line, err)
		}
		return Arg{Kind: ArgNumber, Num: n, Str: tok.Val}, nil
	case Bool:
		return Arg{Kind: ArgBool, Bool: tok.Val == "true", Str: tok.Val}, nil
	default:
		return Arg{Kind: ArgString, Str: tok.Val}, nil
	}
}
