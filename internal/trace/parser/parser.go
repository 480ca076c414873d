// Package parser implements the textual trace grammar: one
// statement per line, quoted paths canonicalized via Unicode NFC
// normalization plus lexical dot-segment folding.
package parser

import (
	"bufio"
	"io"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/fsracer/fsracer/internal/fserrors"
	"github.com/fsracer/fsracer/internal/trace"
)

// Parser implements trace.Source over a textual trace stream.
type Parser struct {
	scanner *bufio.Scanner
	line    int
}

// New returns a Parser reading from r.
func New(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Next implements trace.Source.
func (p *Parser) Next() (trace.Record, bool, error) {
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" {
			continue
		}
		rec, err := p.parseLine(line)
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, false, fserrors.NewTraceError(p.line, "", err.Error())
	}
	return nil, false, nil
}

func (p *Parser) errf(token, message string) error {
	return fserrors.NewTraceError(p.line, token, message)
}

func (p *Parser) parseLine(line string) (trace.Record, error) {
	rawTokens, err := tokenize(line)
	if err != nil {
		return nil, p.errf(line, err.Error())
	}
	if len(rawTokens) == 0 {
		return nil, p.errf(line, "empty statement")
	}
	tokens, debug := extractDebug(rawTokens)
	if len(tokens) == 0 {
		return nil, p.errf(line, "statement has only debug annotations")
	}

	switch tokens[0] {
	case "newTask":
		return p.parseNewTask(tokens)
	case "dependsOn":
		return p.parseDependsOn(tokens)
	case "consumes":
		return p.parseConsumes(tokens)
	case "produces":
		return p.parseProduces(tokens)
	case "sysop":
		return p.parseSysOp(tokens)
	case "execTask":
		return p.parseExecTaskBeg(tokens)
	case "}":
		return trace.EndRecord{}, nil
	default:
		if strings.HasSuffix(tokens[0], ",") {
			pidTok := strings.TrimSuffix(tokens[0], ",")
			pid, err := strconv.Atoi(pidTok)
			if err != nil {
				return nil, p.errf(tokens[0], "expected a pid before ','")
			}
			return p.parseOp(pid, tokens[1:], debug)
		}
		return nil, p.errf(tokens[0], "unrecognized statement")
	}
}

func canonicalizePath(s string) string {
	return path.Clean(norm.NFC.String(s))
}

// tokenize splits a line on whitespace, treating double-quoted
// spans as single tokens (quotes are stripped).
func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ' ' && !inQuotes:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if inQuotes {
		return nil, errUnterminatedQuote
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

var errUnterminatedQuote = unterminatedQuoteError{}

type unterminatedQuoteError struct{}

func (unterminatedQuoteError) Error() string { return "unterminated quoted path" }

// extractDebug pops trailing "!tag" tokens off the end of tokens.
func extractDebug(tokens []string) (remaining []string, debug []string) {
	end := len(tokens)
	for end > 0 && strings.HasPrefix(tokens[end-1], "!") {
		end--
	}
	for _, t := range tokens[end:] {
		debug = append(debug, strings.TrimPrefix(t, "!"))
	}
	return tokens[:end], debug
}

func (p *Parser) parseDirfd(tok string) (int, error) {
	if tok == "AT_FDCWD" {
		return trace.AtFDCWD, nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, p.errf(tok, "expected AT_FDCWD or an integer dirfd")
	}
	return v, nil
}

func (p *Parser) parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, p.errf(tok, "expected an integer")
	}
	return v, nil
}
