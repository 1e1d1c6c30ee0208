package jsonstream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// scope states mirror the enclosing-container stack the tokenizer maintains.
const (
	scopeEmptyDocument = iota
	scopeNonemptyDocument
	scopeEmptyObject
	scopeDanglingName
	scopeNonemptyObject
	scopeEmptyArray
	scopeNonemptyArray
)

// Reader is a pull-based JSON tokenizer. It is streaming: the document never
// has to be resident in memory. Number tokens preserve their raw textual
// form so consumers can reinterpret them losslessly.
type Reader struct {
	in     *bufio.Reader
	stack  []int
	peeked *Token
	offset int64
}

func NewReader(in io.Reader) *Reader {
	return &Reader{
		in:    bufio.NewReader(in),
		stack: []int{scopeEmptyDocument},
	}
}

// NewReaderString tokenizes an in-memory document.
func NewReaderString(doc string) *Reader {
	return NewReader(strings.NewReader(doc))
}

// Peek returns the kind of the next token without consuming it.
func (r *Reader) Peek() (TokenKind, error) {
	if r.peeked == nil {
		tok, err := r.lexToken()
		if err != nil {
			return 0, err
		}
		r.peeked = &tok
	}
	return r.peeked.Kind, nil
}

// NextToken consumes and returns one token.
func (r *Reader) NextToken() (Token, error) {
	if r.peeked != nil {
		tok := *r.peeked
		r.peeked = nil
		return tok, nil
	}
	return r.lexToken()
}

// SkipNext skips a complete value, recursively for objects and arrays. When
// positioned at an object member name, the name and its value are skipped
// together, leaving the reader at the following member.
func (r *Reader) SkipNext() error {
	tok, err := r.NextToken()
	if err != nil {
		return err
	}
	if tok.Kind == Name {
		tok, err = r.NextToken()
		if err != nil {
			return err
		}
	}
	depth := 0
	for {
		switch tok.Kind {
		case BeginObject, BeginArray:
			depth++
		case EndObject, EndArray:
			depth--
			if depth < 0 {
				return r.errorf("unexpected close while skipping")
			}
		case EndDocument:
			return r.errorf("unexpected end of document while skipping")
		}
		if depth <= 0 {
			return nil
		}
		tok, err = r.NextToken()
		if err != nil {
			return err
		}
	}
}

func (r *Reader) top() int { return r.stack[len(r.stack)-1] }

func (r *Reader) replaceTop(s int) { r.stack[len(r.stack)-1] = s }

func (r *Reader) push(s int) { r.stack = append(r.stack, s) }

func (r *Reader) pop() { r.stack = r.stack[:len(r.stack)-1] }

func (r *Reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("json: offset %d: %s", r.offset, fmt.Sprintf(format, args...))
}

func (r *Reader) readByte() (byte, error) {
	c, err := r.in.ReadByte()
	if err == nil {
		r.offset++
	}
	return c, err
}

func (r *Reader) unreadByte() {
	r.offset--
	_ = r.in.UnreadByte()
}

// nextNonSpace consumes insignificant whitespace.
func (r *Reader) nextNonSpace() (byte, error) {
	for {
		c, err := r.readByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c, nil
		}
	}
}

func (r *Reader) lexToken() (Token, error) {
	switch r.top() {
	case scopeEmptyDocument:
		r.replaceTop(scopeNonemptyDocument)
		return r.lexValue()

	case scopeNonemptyDocument:
		c, err := r.nextNonSpace()
		if err == io.EOF {
			return Token{Kind: EndDocument}, nil
		}
		if err != nil {
			return Token{}, err
		}
		return Token{}, r.errorf("unexpected character %q after top-level value", c)

	case scopeEmptyObject:
		c, err := r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c == '}' {
			r.pop()
			return Token{Kind: EndObject}, nil
		}
		return r.lexName(c)

	case scopeNonemptyObject:
		c, err := r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c == '}' {
			r.pop()
			return Token{Kind: EndObject}, nil
		}
		if c != ',' {
			return Token{}, r.errorf("expected ',' or '}' in object, got %q", c)
		}
		c, err = r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		return r.lexName(c)

	case scopeDanglingName:
		c, err := r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c != ':' {
			return Token{}, r.errorf("expected ':' after member name, got %q", c)
		}
		r.replaceTop(scopeNonemptyObject)
		return r.lexValue()

	case scopeEmptyArray:
		c, err := r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c == ']' {
			r.pop()
			return Token{Kind: EndArray}, nil
		}
		r.replaceTop(scopeNonemptyArray)
		r.unreadByte()
		return r.lexValue()

	case scopeNonemptyArray:
		c, err := r.nextNonSpace()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c == ']' {
			r.pop()
			return Token{Kind: EndArray}, nil
		}
		if c != ',' {
			return Token{}, r.errorf("expected ',' or ']' in array, got %q", c)
		}
		return r.lexValue()
	}
	return Token{}, r.errorf("corrupt tokenizer state")
}

// lexName reads an object member name beginning at c.
func (r *Reader) lexName(c byte) (Token, error) {
	if c != '"' {
		return Token{}, r.errorf("expected member name, got %q", c)
	}
	name, err := r.lexString()
	if err != nil {
		return Token{}, err
	}
	r.replaceTop(scopeDanglingName)
	return Token{Kind: Name, Text: name}, nil
}

func (r *Reader) unexpectedEOF(err error) error {
	if err == io.EOF {
		return r.errorf("unexpected end of document")
	}
	return err
}

// lexValue reads one value token after the container bookkeeping has been
// handled.
func (r *Reader) lexValue() (Token, error) {
	c, err := r.nextNonSpace()
	if err != nil {
		return Token{}, r.unexpectedEOF(err)
	}
	switch {
	case c == '{':
		r.push(scopeEmptyObject)
		return Token{Kind: BeginObject}, nil
	case c == '[':
		r.push(scopeEmptyArray)
		return Token{Kind: BeginArray}, nil
	case c == '}' || c == ']':
		return Token{}, r.errorf("unexpected close %q", c)
	case c == '"':
		s, err := r.lexString()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: String, Text: s}, nil
	case c == 't':
		if err := r.expect("rue"); err != nil {
			return Token{}, err
		}
		return Token{Kind: Bool, Bool: true}, nil
	case c == 'f':
		if err := r.expect("alse"); err != nil {
			return Token{}, err
		}
		return Token{Kind: Bool, Bool: false}, nil
	case c == 'n':
		if err := r.expect("ull"); err != nil {
			return Token{}, err
		}
		return Token{Kind: Null}, nil
	case c == '-' || ('0' <= c && c <= '9'):
		return r.lexNumber(c)
	}
	return Token{}, r.errorf("unexpected character %q", c)
}

func (r *Reader) expect(rest string) error {
	for i := 0; i < len(rest); i++ {
		c, err := r.readByte()
		if err != nil {
			return r.unexpectedEOF(err)
		}
		if c != rest[i] {
			return r.errorf("invalid literal")
		}
	}
	return nil
}

// lexNumber accepts [-]?digits(.digits)?([eE][+-]?digits)? and returns the
// raw text.
func (r *Reader) lexNumber(first byte) (Token, error) {
	var b strings.Builder
	b.WriteByte(first)

	digits := func(minOne bool) error {
		n := 0
		for {
			c, err := r.readByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if c < '0' || c > '9' {
				r.unreadByte()
				break
			}
			b.WriteByte(c)
			n++
		}
		if minOne && n == 0 {
			return r.errorf("malformed number")
		}
		return nil
	}

	if first == '-' {
		c, err := r.readByte()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c < '0' || c > '9' {
			return Token{}, r.errorf("malformed number")
		}
		b.WriteByte(c)
		first = c
	}
	leadZero := first == '0'
	if err := digits(false); err != nil {
		return Token{}, err
	}
	intDigits := numberIntLen(b.String())
	if strings.HasPrefix(b.String(), "-") {
		intDigits--
	}
	if leadZero && intDigits > 1 {
		return Token{}, r.errorf("malformed number: leading zero")
	}

	c, err := r.readByte()
	if err == nil && c == '.' {
		b.WriteByte('.')
		if err := digits(true); err != nil {
			return Token{}, err
		}
		c, err = r.readByte()
	}
	if err == nil && (c == 'e' || c == 'E') {
		b.WriteByte(c)
		c, err = r.readByte()
		if err != nil {
			return Token{}, r.unexpectedEOF(err)
		}
		if c == '+' || c == '-' {
			b.WriteByte(c)
		} else {
			r.unreadByte()
		}
		if err := digits(true); err != nil {
			return Token{}, err
		}
		c, err = r.readByte()
	}
	if err == nil {
		r.unreadByte()
	} else if err != io.EOF {
		return Token{}, err
	}
	return Token{Kind: Number, Text: b.String()}, nil
}

// numberIntLen returns the length of the integer part, sign included.
func numberIntLen(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return i
}

// lexString reads the remainder of a string literal, minimally un-escaping
// per RFC 8259. The opening quote has already been consumed.
func (r *Reader) lexString() (string, error) {
	var b strings.Builder
	for {
		c, err := r.readByte()
		if err != nil {
			return "", r.unexpectedEOF(err)
		}
		switch {
		case c == '"':
			return b.String(), nil
		case c == '\\':
			if err := r.lexEscape(&b); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", r.errorf("unescaped control character 0x%02x in string", c)
		default:
			b.WriteByte(c)
		}
	}
}

func (r *Reader) lexEscape(b *strings.Builder) error {
	c, err := r.readByte()
	if err != nil {
		return r.unexpectedEOF(err)
	}
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		u1, err := r.lexHex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(rune(u1)) {
			c1, err1 := r.readByte()
			c2, err2 := r.readByte()
			if err1 != nil || err2 != nil || c1 != '\\' || c2 != 'u' {
				b.WriteRune(utf8.RuneError)
				if err1 == nil && err2 == nil {
					r.unreadByte()
				}
				return nil
			}
			u2, err := r.lexHex4()
			if err != nil {
				return err
			}
			b.WriteRune(utf16.DecodeRune(rune(u1), rune(u2)))
			return nil
		}
		b.WriteRune(rune(u1))
	default:
		return r.errorf("invalid escape '\\%c'", c)
	}
	return nil
}

func (r *Reader) lexHex4() (int, error) {
	v := 0
	for i := 0; i < 4; i++ {
		c, err := r.readByte()
		if err != nil {
			return 0, r.unexpectedEOF(err)
		}
		v <<= 4
		switch {
		case '0' <= c && c <= '9':
			v |= int(c - '0')
		case 'a' <= c && c <= 'f':
			v |= int(c-'a') + 10
		case 'A' <= c && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0, r.errorf("invalid unicode escape")
		}
	}
	return v, nil
}
