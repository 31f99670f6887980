package grammar

import (
	"fmt"
)

// CharsetError is returned when a [...] character set cannot be parsed.
type CharsetError struct {
	Charset string
	// Offset in runes at which the error was detected.
	Offset  int
	Message string
}

func (c *CharsetError) Error() string {
	return fmt.Sprintf("character set %s: offset %d: %s", c.Charset, c.Offset, c.Message)
}

type charsetState int

const (
	charsetStart charsetState = iota
	inCharset
	charsetEnd
)

// ParseCharset parses an ANTLR lexer character set such as [a-zA-Z_\-] into a
// CharacterClass of Char and CharRange choices.
//
// Supported escapes are \n \r \t \f \b \] \\ \- and \uXXXX (or \u{X...}).
func ParseCharset(charset string) (*CharacterClass, error) {
	p := &charsetParser{charset: charset, runeScanner: newRuneScanner(charset)}
	return p.parse()
}

type charsetParser struct {
	*runeScanner
	charset string
}

func (p *charsetParser) errorf(format string, args ...interface{}) error {
	return &CharsetError{Charset: p.charset, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *charsetParser) parse() (*CharacterClass, error) {
	class := &CharacterClass{}
	state := charsetStart
	for state != charsetEnd {
		ch, ok := p.next()
		if !ok {
			return nil, p.errorf("unexpected end of character set")
		}
		switch state {
		case charsetStart:
			if ch != '[' {
				return nil, p.errorf("expected [ but got %q", ch)
			}
			state = inCharset

		case inCharset:
			if ch == ']' {
				state = charsetEnd
				continue
			}
			lo, err := p.char(ch)
			if err != nil {
				return nil, err
			}
			if p.rangeFollows() {
				p.pos++
				ch, _ = p.next()
				hi, err := p.char(ch)
				if err != nil {
					return nil, err
				}
				class.Choices = append(class.Choices, &CharRange{Lo: lo, Hi: hi})
				continue
			}
			class.Choices = append(class.Choices, &Char{Value: lo})

		case charsetEnd:
		}
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q after character set", p.runes[p.pos])
	}
	return class, nil
}

// rangeFollows reports whether the next runes are '-' and a range bound. A '-'
// directly before the closing ']' is a literal.
func (p *charsetParser) rangeFollows() bool {
	dash, ok := p.peekAt(0)
	if !ok || dash != '-' {
		return false
	}
	hi, ok := p.peekAt(1)
	return ok && hi != ']'
}

func (p *charsetParser) char(ch rune) (rune, error) {
	if ch != '\\' {
		return ch, nil
	}
	return p.escape()
}

func (p *charsetParser) escape() (rune, error) {
	ch, ok := p.next()
	if !ok {
		return 0, p.errorf("unexpected end of input in escape sequence")
	}
	switch ch {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'f':
		return '\f', nil
	case 'b':
		return '\b', nil
	case ']', '\\', '-':
		return ch, nil
	case 'u':
		r, err := p.unicodeEscape()
		if err != nil {
			return 0, p.errorf("%s", err)
		}
		return r, nil
	}
	return 0, p.errorf("invalid escape sequence \\%c", ch)
}
