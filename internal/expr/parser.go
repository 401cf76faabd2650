// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

func NewParser() *Parser {
	return &Parser{}
}

type Parser struct {
	input string
	pos   int
	// nextPos is start of the next char.
	nextPos int
	// char is the rune starting at pos. char is set to 0 when pos reaches the
	// end of input.
	char rune
	// prevExprEnd is the value of pos when we last finished parsing a
	// expression.
	prevExprEnd int
	// currentExprStart is the value of pos just before we started parsing the
	// expression under pos. We maintain currentExprStart >= prevExprEnd.
	currentExprStart int
	// parts are the output of the parser. Parts are added as they are parsed.
	parts []queryPart
	// lineNum is the number of the current line of the input.
	lineNum int
	// lineStart is the position of the first char of the current line in the
	// input.
	lineStart int
}

// Parse takes a query string and returns a ParsedExpr.
func (p *Parser) Parse(input string) (pe *ParsedExpr, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot parse expression: %s", err)
		}
	}()

	p.init(input)

	for p.pos < len(p.input) {
		if ok, err := p.skipStringLiteral(); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		if p.skipComment() {
			continue
		}

		p.currentExprStart = p.pos
		if in, ok, err := p.parseInputExpr(); err != nil {
			return nil, err
		} else if ok {
			p.add(in)
			continue
		}

		p.advanceChar()
	}

	// Add any remaining unparsed string input to the parser.
	p.currentExprStart = p.pos
	p.add(nil)
	return &ParsedExpr{parts: p.parts}, nil
}

// init resets the state of the parser and sets the input string.
func (p *Parser) init(input string) {
	p.input = input
	p.pos = 0
	p.nextPos = 0
	p.char = 0
	p.prevExprEnd = 0
	p.currentExprStart = 0
	p.parts = []queryPart{}
	p.lineNum = 1
	p.lineStart = 0
	p.advanceChar()
}

// colNum calculates the current column number taking into account line breaks.
func (p *Parser) colNum() int {
	return p.pos - p.lineStart + 1
}

// advanceChar moves the parser to the next character in the input. It also
// takes care of updating the line and column numbers if it encounters line
// breaks.
func (p *Parser) advanceChar() bool {
	if p.nextPos >= len(p.input) {
		p.char = 0
		p.pos = p.nextPos
		return false
	}
	if p.char == '\n' {
		p.lineStart = p.nextPos
		p.lineNum++
	}
	var size int
	p.char, size = utf8.DecodeRuneInString(p.input[p.nextPos:])
	p.pos = p.nextPos
	p.nextPos += size
	return true
}

// errorAt wraps an error with line and column information.
func errorAt(err error, line int, column int, input string) error {
	if strings.ContainsRune(input, '\n') {
		return fmt.Errorf("line %d, column %d: %w", line, column, err)
	}
	return fmt.Errorf("column %d: %w", column, err)
}

// A checkpoint struct for saving parser state to restore later.
type checkpoint struct {
	parser    *Parser
	pos       int
	nextPos   int
	char      rune
	lineNum   int
	lineStart int
}

// save takes a snapshot of the state of the parser and returns a pointer to a
// checkpoint that represents it.
func (p *Parser) save() *checkpoint {
	return &checkpoint{
		parser:    p,
		pos:       p.pos,
		nextPos:   p.nextPos,
		char:      p.char,
		lineNum:   p.lineNum,
		lineStart: p.lineStart,
	}
}

// restore sets the internal state of the parser to the values stored in the
// checkpoint.
func (cp *checkpoint) restore() {
	cp.parser.pos = cp.pos
	cp.parser.nextPos = cp.nextPos
	cp.parser.char = cp.char
	cp.parser.lineNum = cp.lineNum
	cp.parser.lineStart = cp.lineStart
}

// add pushes the parsed expression to the list of parts along with the
// bypass chunk that stretches from the end of the previous expression to the
// beginning of this expression.
func (p *Parser) add(part queryPart) {
	if p.prevExprEnd != p.currentExprStart {
		p.parts = append(p.parts,
			&bypassPart{p.input[p.prevExprEnd:p.currentExprStart]})
	}

	if part != nil {
		p.parts = append(p.parts, part)
	}

	p.prevExprEnd = p.pos
	p.currentExprStart = p.pos
}

// skipComment jumps over comments as defined by the SQLite spec. If no comment
// is found the parser state is left unchanged.
func (p *Parser) skipComment() bool {
	cp := p.save()
	c := p.char
	if p.skipChar('-') || p.skipChar('/') {
		if (c == '-' && p.skipChar('-')) || (c == '/' && p.skipChar('*')) {
			var end rune
			if c == '-' {
				end = '\n'
			} else {
				end = '*'
			}
			for p.pos < len(p.input) {
				if p.char == end {
					// if end == '\n' (i.e. its a -- comment) dont consume the newline.
					if end == '*' {
						p.advanceChar()
						if !p.skipChar('/') {
							continue
						}
					}
					return true
				}
				p.advanceChar()
			}
			// Reached end of input (valid comment end).
			return true
		}
		cp.restore()
		return false
	}
	return false
}

// skipStringLiteral jumps over single and double quoted sections of input.
// Doubled up quotes are escaped.
func (p *Parser) skipStringLiteral() (bool, error) {
	cp := p.save()

	c := p.char
	if p.skipChar('"') || p.skipChar('\'') {
		// We keep track of whether the next quote has been previously
		// escaped. If not, it might be a closing quote.
		maybeCloser := true
		for p.skipCharFind(c) {
			// If this looks like a closing quote, check if it might be an
			// escape for a following quote. If not, we're done.
			if maybeCloser && !p.peekChar(c) {
				return true, nil
			}
			maybeCloser = !maybeCloser
		}

		// Reached end of string and didn't find the closing quote
		cp.restore()
		return false, errorAt(fmt.Errorf("missing closing quote in string literal"), cp.lineNum, cp.pos-cp.lineStart+1, p.input)
	}
	return false, nil
}

// peekChar returns true if the current char equals the one passed as parameter.
func (p *Parser) peekChar(c rune) bool {
	return p.pos < len(p.input) && p.char == c
}

// skipChar jumps over the current char if it matches the char passed as a
// parameter. Returns true in that case, false otherwise.
func (p *Parser) skipChar(c rune) bool {
	if p.pos < len(p.input) && p.char == c {
		p.advanceChar()
		return true
	}
	return false
}

// skipCharFind looks for a char that matches the one passed as parameter and
// then advances the parser to jump over it. In that case returns true. If the
// end of the string is reached and no matching char was found, it returns
// false and it does not change the parser.
func (p *Parser) skipCharFind(c rune) bool {
	cp := p.save()
	for p.pos < len(p.input) {
		if p.char == c {
			p.advanceChar()
			return true
		}
		p.advanceChar()
	}
	cp.restore()
	return false
}

// isNameChar returns true if the given char can be part of a name. It returns
// false otherwise.
func isNameChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

// isInitialNameChar returns true if the given char can appear at the start of a
// name. It returns false otherwise.
func isInitialNameChar(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

// parseName parses a name starting with a letter or underscore and followed
// by letters, digits and underscores. This matches both Go type names and the
// db tags accepted by typeinfo.
func (p *Parser) parseName() (string, bool) {
	mark := p.pos

	if p.pos < len(p.input) && isInitialNameChar(p.char) {
		p.advanceChar()
		for p.pos < len(p.input) && isNameChar(p.char) {
			p.advanceChar()
		}
	}

	if p.pos > mark {
		return p.input[mark:p.pos], true
	}
	return "", false
}

// parseInputExpr parses an input expression of the form "$Type.member".
// A "$" that is not followed by a name, such as a "$1" placeholder, is left
// to the database.
func (p *Parser) parseInputExpr() (*inputPart, bool, error) {
	cp := p.save()
	if !p.skipChar('$') {
		return nil, false, nil
	}

	// The error points to the $.
	line, col := cp.lineNum, cp.pos-cp.lineStart+1
	typeName, ok := p.parseName()
	if !ok {
		cp.restore()
		return nil, false, nil
	}
	if !p.skipChar('.') {
		return nil, false, errorAt(fmt.Errorf("unqualified type, expected %s.<db tag>", typeName), line, col, p.input)
	}
	if p.skipChar('*') {
		return nil, false, errorAt(fmt.Errorf("invalid asterisk in input expression %q", "$"+typeName+".*"), line, col, p.input)
	}
	member, ok := p.parseName()
	if !ok {
		return nil, false, errorAt(fmt.Errorf("invalid identifier suffix following %q", typeName), p.lineNum, p.colNum(), p.input)
	}
	return &inputPart{
		ma:  memberAccessor{typeName: typeName, memberName: member},
		raw: p.input[cp.pos:p.pos],
	}, true, nil
}
