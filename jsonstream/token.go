package jsonstream

import "fmt"

// TokenKind identifies a token without carrying its value; Peek returns only
// the kind.
type TokenKind int

const (
	BeginObject TokenKind = iota
	EndObject
	BeginArray
	EndArray
	Name
	String
	Number
	Bool
	Null
	EndDocument
)

func (k TokenKind) String() string {
	switch k {
	case BeginObject:
		return "BeginObject"
	case EndObject:
		return "EndObject"
	case BeginArray:
		return "BeginArray"
	case EndArray:
		return "EndArray"
	case Name:
		return "Name"
	case String:
		return "String"
	case Number:
		return "Number"
	case Bool:
		return "Bool"
	case Null:
		return "Null"
	case EndDocument:
		return "EndDocument"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one element of the stream. Text carries the name, the unescaped
// string value, or the raw number text for lossless reinterpretation.
type Token struct {
	Kind TokenKind
	Text string
	Bool bool
}

func (t Token) String() string {
	switch t.Kind {
	case Name, Number:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	case String:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case Bool:
		return fmt.Sprintf("Bool(%v)", t.Bool)
	default:
		return t.Kind.String()
	}
}
