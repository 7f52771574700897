package menu

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// DefaultVarName name of the variable doxygen assigns the menu literal to
const DefaultVarName = "menudata"

type (
	jsEncoder struct {
		varName string
		license string
	}
	// JSOption configures MarshalJS
	JSOption func(*jsEncoder)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithVarName(v string) JSOption {
	return func(o *jsEncoder) {
		o.varName = v
	}
}

// WithLicenseHeader prepends the given text as a block comment
func WithLicenseHeader(v string) JSOption {
	return func(o *jsEncoder) {
		o.license = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// ParseJS reads a "var menudata={children:[...]}" literal, leading comments
// are ignored
func ParseJS(data []byte) (*Menu, error) {
	jsonBytes, err := jsToJSON(data)
	if err != nil {
		return nil, err
	}
	m := &Menu{}
	if err := json.Unmarshal(jsonBytes, m); err != nil {
		return nil, errors.Wrap(err, "failed to decode menu literal")
	}
	return m, nil
}

// MarshalJS writes the menu the way doxygen does: one node per line
func MarshalJS(m *Menu, opts ...JSOption) ([]byte, error) {
	if m == nil {
		return nil, errors.New("menu must not be nil")
	}
	enc := &jsEncoder{varName: DefaultVarName}
	for _, opt := range opts {
		opt(enc)
	}
	var buf bytes.Buffer
	if enc.license != "" {
		buf.WriteString("/*\n")
		buf.WriteString(enc.license)
		buf.WriteString("\n*/\n")
	}
	buf.WriteString("var ")
	buf.WriteString(enc.varName)
	buf.WriteString("={children:[\n")
	if err := enc.nodes(&buf, m.Children, 0); err != nil {
		return nil, err
	}
	buf.WriteString("]}\n")
	return buf.Bytes(), nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (e *jsEncoder) nodes(buf *bytes.Buffer, nodes []*Node, depth int) error {
	if depth > MaxDepth {
		return errors.Errorf("nesting deeper than %d levels", MaxDepth)
	}
	for i, n := range nodes {
		if n == nil {
			return errors.New("node must not be nil")
		}
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString("{text:")
		if err := writeJSString(buf, n.Text); err != nil {
			return errors.Wrapf(err, "text of node %d", i)
		}
		buf.WriteString(",url:")
		if err := writeJSString(buf, n.URL); err != nil {
			return errors.Wrapf(err, "url of node %d", i)
		}
		if n.Children != nil {
			buf.WriteString(",children:[\n")
			if err := e.nodes(buf, n.Children, depth+1); err != nil {
				return err
			}
			buf.WriteString("]")
		}
		buf.WriteString("}")
	}
	return nil
}

// writeJSString writes v as a double quoted js string, everything that is not
// printable is written as \uXXXX, astral runes as surrogate pairs
func writeJSString(buf *bytes.Buffer, v string) error {
	if !utf8.ValidString(v) {
		return errors.Errorf("invalid utf-8 in %q", v)
	}
	buf.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if unicode.IsPrint(r) {
				buf.WriteRune(r)
			} else if r > 0xffff {
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(buf, `\u%04x\u%04x`, r1, r2)
			} else {
				fmt.Fprintf(buf, `\u%04x`, r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

// jsToJSON turns the object literal into json: bare keys get quoted, comments
// and the variable declaration are dropped
func jsToJSON(data []byte) ([]byte, error) {
	s := &jsScanner{data: data}
	s.skipSpaceAndComments()
	if s.consumeWord("var") || s.consumeWord("let") || s.consumeWord("const") {
		s.skipSpaceAndComments()
		if s.ident() == "" {
			return nil, s.errorf("expected variable name")
		}
		s.skipSpaceAndComments()
		if !s.consume('=') {
			return nil, s.errorf("expected '='")
		}
		s.skipSpaceAndComments()
	}
	if s.peek() != '{' {
		return nil, s.errorf("expected '{'")
	}
	out, err := s.convert()
	if err != nil {
		return nil, err
	}
	s.skipSpaceAndComments()
	s.consume(';')
	s.skipSpaceAndComments()
	if !s.eof() {
		return nil, s.errorf("unexpected trailing content")
	}
	return out, nil
}

type jsScanner struct {
	data []byte
	pos  int
}

func (s *jsScanner) eof() bool {
	return s.pos >= len(s.data)
}

func (s *jsScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.data[s.pos]
}

func (s *jsScanner) consume(c byte) bool {
	if s.peek() == c {
		s.pos++
		return true
	}
	return false
}

func (s *jsScanner) consumeWord(w string) bool {
	end := s.pos + len(w)
	if end > len(s.data) || string(s.data[s.pos:end]) != w {
		return false
	}
	if end < len(s.data) && isIdentPart(s.data[end]) {
		return false
	}
	s.pos = end
	return true
}

func (s *jsScanner) errorf(format string, args ...interface{}) error {
	return errors.Errorf("menu literal at offset %d: %s", s.pos, fmt.Sprintf(format, args...))
}

func (s *jsScanner) skipSpaceAndComments() {
	for !s.eof() {
		switch c := s.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '*':
			end := bytes.Index(s.data[s.pos+2:], []byte("*/"))
			if end < 0 {
				s.pos = len(s.data)
				return
			}
			s.pos += end + 4
		case c == '/' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '/':
			end := bytes.IndexByte(s.data[s.pos:], '\n')
			if end < 0 {
				s.pos = len(s.data)
				return
			}
			s.pos += end + 1
		default:
			return
		}
	}
}

func (s *jsScanner) ident() string {
	start := s.pos
	if s.eof() || !isIdentStart(s.peek()) {
		return ""
	}
	for !s.eof() && isIdentPart(s.peek()) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// convert copies one value starting at the current position
func (s *jsScanner) convert() ([]byte, error) {
	var out bytes.Buffer
	depth := 0
	for {
		s.skipSpaceAndComments()
		if s.eof() {
			return nil, s.errorf("unexpected end of input")
		}
		c := s.peek()
		switch {
		case c == '{' || c == '[':
			depth++
			out.WriteByte(c)
			s.pos++
		case c == '}' || c == ']':
			depth--
			out.WriteByte(c)
			s.pos++
			if depth == 0 {
				return out.Bytes(), nil
			}
		case c == ',':
			s.pos++
			s.skipSpaceAndComments()
			// trailing commas are valid js but not json
			if next := s.peek(); next != '}' && next != ']' {
				out.WriteByte(',')
			}
		case c == ':':
			out.WriteByte(c)
			s.pos++
		case c == '"' || c == '\'':
			str, err := s.str()
			if err != nil {
				return nil, err
			}
			out.WriteString(str)
		case isIdentStart(c):
			word := s.ident()
			s.skipSpaceAndComments()
			if s.peek() == ':' {
				out.WriteString(strconv.Quote(word))
				continue
			}
			switch word {
			case "true", "false", "null":
				out.WriteString(word)
			default:
				return nil, s.errorf("unexpected identifier %q", word)
			}
		case c == '-' || (c >= '0' && c <= '9'):
			start := s.pos
			s.pos++
			for !s.eof() && bytes.IndexByte([]byte("0123456789.eE+-"), s.peek()) >= 0 {
				s.pos++
			}
			out.Write(s.data[start:s.pos])
		default:
			return nil, s.errorf("unexpected character %q", c)
		}
		if depth == 0 {
			return out.Bytes(), nil
		}
	}
}

// str reads a quoted js string and returns it as a json string
func (s *jsScanner) str() (string, error) {
	quote := s.peek()
	s.pos++
	var out bytes.Buffer
	out.WriteByte('"')
	for {
		if s.eof() {
			return "", s.errorf("unterminated string")
		}
		c := s.peek()
		s.pos++
		switch {
		case c == quote:
			out.WriteByte('"')
			var v string
			if err := json.Unmarshal(out.Bytes(), &v); err != nil {
				return "", s.errorf("invalid string %s", out.String())
			}
			return out.String(), nil
		case c == '\\':
			if s.eof() {
				return "", s.errorf("unterminated string")
			}
			next := s.peek()
			s.pos++
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				// same escape in json
				out.WriteByte('\\')
				out.WriteByte(next)
			case 'v':
				out.WriteString(`\u000b`)
			case '0':
				out.WriteString(`\u0000`)
			case 'x':
				if s.pos+2 > len(s.data) {
					return "", s.errorf("unterminated string")
				}
				hex := string(s.data[s.pos : s.pos+2])
				if _, err := strconv.ParseUint(hex, 16, 8); err != nil {
					return "", s.errorf("invalid escape \\x%s", hex)
				}
				out.WriteString(`\u00` + hex)
				s.pos += 2
			case '\n':
				return "", s.errorf("newline in string")
			default:
				// any other escaped character stands for itself
				s.pos--
				s.char(&out)
			}
		case c == '"':
			// only reachable inside single quoted strings
			out.WriteString(`\"`)
		case c == '\n':
			return "", s.errorf("newline in string")
		case c < 0x20:
			fmt.Fprintf(&out, `\u%04x`, c)
		default:
			s.pos--
			s.char(&out)
		}
	}
}

// char copies one utf-8 sequence
func (s *jsScanner) char(out *bytes.Buffer) {
	_, size := utf8.DecodeRune(s.data[s.pos:])
	out.Write(s.data[s.pos : s.pos+size])
	s.pos += size
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
