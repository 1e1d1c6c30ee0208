package jsonstream

import (
	"fmt"
	"strconv"
)

// SerdeKind is the wire shape of a field.
type SerdeKind int

const (
	KindString SerdeKind = iota
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindStruct
	KindList
	KindMap
	KindBlob
	KindTimestamp
	KindDocument
)

// Trait annotates a field descriptor. IgnoreKey forces a field to be skipped
// during deserialization even when the model declares it.
type Trait interface{ trait() }

// IgnoreKey marks name to be skipped. When RegardlessOfInModel is false the
// key is only ignored when it is also absent from the descriptor.
type IgnoreKey struct {
	Name               string
	RegardlessOfInModel bool
}

func (IgnoreKey) trait() {}

// FieldDescriptor binds a serial name to the dispatch index generated code
// switches on.
type FieldDescriptor struct {
	Index      int
	SerialName string
	Kind       SerdeKind
	Traits     []Trait
}

// ObjectDescriptor describes one modeled structure.
type ObjectDescriptor struct {
	fields  []FieldDescriptor
	byName  map[string]*FieldDescriptor
	ignored map[string]bool
}

func NewObjectDescriptor(fields ...FieldDescriptor) *ObjectDescriptor {
	d := &ObjectDescriptor{
		fields:  fields,
		byName:  make(map[string]*FieldDescriptor, len(fields)),
		ignored: make(map[string]bool),
	}
	for i := range d.fields {
		f := &d.fields[i]
		d.byName[f.SerialName] = f
		for _, t := range f.Traits {
			if ig, ok := t.(IgnoreKey); ok {
				d.ignored[ig.Name] = ig.RegardlessOfInModel
			}
		}
	}
	return d
}

// WithIgnoredKeys registers object-level ignore traits.
func (d *ObjectDescriptor) WithIgnoredKeys(keys ...IgnoreKey) *ObjectDescriptor {
	for _, k := range keys {
		d.ignored[k.Name] = k.RegardlessOfInModel
	}
	return d
}

func (d *ObjectDescriptor) Field(index int) (FieldDescriptor, bool) {
	for _, f := range d.fields {
		if f.Index == index {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// UnknownField is emitted for members the descriptor does not declare; the
// member's value has already been skipped when it is returned.
const UnknownField = -1

// Deserializer walks one JSON object against a descriptor so a dispatch
// switch can populate a builder.
type Deserializer struct {
	r     *Reader
	desc  *ObjectDescriptor
	begun bool
}

func NewDeserializer(r *Reader, desc *ObjectDescriptor) *Deserializer {
	return &Deserializer{r: r, desc: desc}
}

// NextField returns the dispatch index of the next member, UnknownField for
// an undeclared member (its value is skipped recursively before returning),
// or done=true once the enclosing object ends.
func (d *Deserializer) NextField() (index int, done bool, err error) {
	if !d.begun {
		tok, err := d.r.NextToken()
		if err != nil {
			return 0, false, err
		}
		if tok.Kind == Null {
			return 0, true, nil
		}
		if tok.Kind != BeginObject {
			return 0, false, fmt.Errorf("expected object, got %s", tok.Kind)
		}
		d.begun = true
	}
	for {
		tok, err := d.r.NextToken()
		if err != nil {
			return 0, false, err
		}
		switch tok.Kind {
		case EndObject:
			return 0, true, nil
		case Name:
			regardless, isIgnored := d.desc.ignored[tok.Text]
			field, inModel := d.desc.byName[tok.Text]
			if isIgnored && (regardless || !inModel) {
				if err := d.r.SkipNext(); err != nil {
					return 0, false, err
				}
				continue
			}
			if !inModel {
				if err := d.r.SkipNext(); err != nil {
					return 0, false, err
				}
				return UnknownField, false, nil
			}
			return field.Index, false, nil
		default:
			return 0, false, fmt.Errorf("expected member name or end of object, got %s", tok.Kind)
		}
	}
}

// Scalar accessors consume the value of the member NextField just dispatched.

func (d *Deserializer) ReadString() (string, error) {
	tok, err := d.r.NextToken()
	if err != nil {
		return "", err
	}
	if tok.Kind != String {
		return "", fmt.Errorf("expected string, got %s", tok.Kind)
	}
	return tok.Text, nil
}

func (d *Deserializer) ReadInt() (int64, error) {
	tok, err := d.r.NextToken()
	if err != nil {
		return 0, err
	}
	if tok.Kind != Number {
		return 0, fmt.Errorf("expected number, got %s", tok.Kind)
	}
	return strconv.ParseInt(tok.Text, 10, 64)
}

func (d *Deserializer) ReadFloat() (float64, error) {
	tok, err := d.r.NextToken()
	if err != nil {
		return 0, err
	}
	switch tok.Kind {
	case Number:
		return strconv.ParseFloat(tok.Text, 64)
	case String:
		// Non-finite doubles travel as quoted strings.
		switch tok.Text {
		case "NaN", "Infinity", "-Infinity":
			return strconv.ParseFloat(tok.Text, 64)
		}
	}
	return 0, fmt.Errorf("expected number, got %s", tok.Kind)
}

func (d *Deserializer) ReadBool() (bool, error) {
	tok, err := d.r.NextToken()
	if err != nil {
		return false, err
	}
	if tok.Kind != Bool {
		return false, fmt.Errorf("expected bool, got %s", tok.Kind)
	}
	return tok.Bool, nil
}

// ReadNullable reports whether the next value is null, consuming it if so.
func (d *Deserializer) ReadNullable() (isNull bool, err error) {
	kind, err := d.r.Peek()
	if err != nil {
		return false, err
	}
	if kind == Null {
		_, err = d.r.NextToken()
		return true, err
	}
	return false, nil
}

// Reader exposes the underlying token reader for nested aggregates.
func (d *Deserializer) Reader() *Reader { return d.r }
