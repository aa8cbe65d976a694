package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the primitive or composite shape of a Field.
type Kind int

const (
	KindInt32 Kind = iota
	KindInt64
	KindFloat64
	KindBool
	KindString
	KindBytes
	KindTimestamp
	KindStruct
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field is one column definition. Struct fields carry Children; List
// fields carry a single Elem describing the repeated element's shape.
type Field struct {
	Name     string
	Kind     Kind
	Nullable bool
	Children []Field
	Elem     *Field
}

// Class is one parsed "message <name> { ... }" schema, named after the
// OCSF class it encodes (e.g. "api_activity").
type Class struct {
	Name   string
	Fields []Field
}

// Field looks up a direct child field by name.
func (c *Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Parse reads one schema file's contents into a Class.
func Parse(src string) (*Class, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseMessage()
}

type token struct {
	text string
}

func tokenize(src string) ([]token, error) {
	var toks []token
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, token{text: cur.String()})
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '{' || r == '}' || r == '(' || r == ')' || r == ';' || r == ',':
			flush()
			toks = append(toks, token{text: string(r)})
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, error) {
	t, ok := p.peek()
	if !ok {
		return token{}, fmt.Errorf("schema: unexpected end of input")
	}
	p.pos++
	return t, nil
}

func (p *parser) expect(text string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.text != text {
		return fmt.Errorf("schema: expected %q, got %q", text, t.text)
	}
	return nil
}

func (p *parser) parseMessage() (*Class, error) {
	if err := p.expect("message"); err != nil {
		return nil, err
	}
	name, err := p.next()
	if err != nil {
		return nil, err
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	fields, err := p.parseFields()
	if err != nil {
		return nil, err
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return &Class{Name: name.text, Fields: fields}, nil
}

func (p *parser) parseFields() ([]Field, error) {
	var fields []Field
	for {
		t, ok := p.peek()
		if !ok || t.text == "}" {
			return fields, nil
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
}

// parseField consumes one "optional|required|repeated <type-or-group> ..."
// declaration, including its trailing ";" for leaves or its "{ ... }" body
// for groups.
func (p *parser) parseField() (Field, error) {
	rep, err := p.next()
	if err != nil {
		return Field{}, err
	}
	nullable := rep.text != "required"

	kindTok, err := p.next()
	if err != nil {
		return Field{}, err
	}

	if kindTok.text == "group" {
		return p.parseGroup(nullable)
	}

	name, err := p.next()
	if err != nil {
		return Field{}, err
	}

	var annotation string
	if t, ok := p.peek(); ok && t.text == "(" {
		annotation, err = p.parseAnnotation()
		if err != nil {
			return Field{}, err
		}
	}
	if err := p.expect(";"); err != nil {
		return Field{}, err
	}

	kind, err := resolvePrimitiveKind(kindTok.text, annotation)
	if err != nil {
		return Field{}, err
	}

	return Field{Name: name.text, Kind: kind, Nullable: nullable}, nil
}

// parseAnnotation consumes a "(NAME)" or "(NAME(args...))" logical-type
// annotation and returns the outer annotation name.
func (p *parser) parseAnnotation() (string, error) {
	if err := p.expect("("); err != nil {
		return "", err
	}
	nameTok, err := p.next()
	if err != nil {
		return "", err
	}
	if t, ok := p.peek(); ok && t.text == "(" {
		// skip nested args, e.g. INTEGER(32, true)
		depth := 0
		for {
			tok, err := p.next()
			if err != nil {
				return "", err
			}
			if tok.text == "(" {
				depth++
			}
			if tok.text == ")" {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return "", err
	}
	return nameTok.text, nil
}

func (p *parser) parseGroup(nullable bool) (Field, error) {
	name, err := p.next()
	if err != nil {
		return Field{}, err
	}

	isList := false
	if t, ok := p.peek(); ok && t.text == "(" {
		ann, err := p.parseAnnotation()
		if err != nil {
			return Field{}, err
		}
		isList = ann == "LIST"
	}

	if err := p.expect("{"); err != nil {
		return Field{}, err
	}
	children, err := p.parseFields()
	if err != nil {
		return Field{}, err
	}
	if err := p.expect("}"); err != nil {
		return Field{}, err
	}

	if !isList {
		return Field{Name: name.text, Kind: KindStruct, Nullable: nullable, Children: children}, nil
	}

	// LIST groups wrap a single "repeated group list { ... }" whose own
	// children describe the element shape. A single scalar child named
	// "element" represents a list of scalars; anything else is treated as
	// a list of structs.
	if len(children) != 1 || children[0].Name != "list" {
		return Field{}, fmt.Errorf("schema: LIST group %q must contain exactly one 'list' child", name.text)
	}
	wrapper := children[0]

	var elem Field
	if len(wrapper.Children) == 1 && wrapper.Children[0].Name == "element" {
		elem = wrapper.Children[0]
	} else {
		elem = Field{Kind: KindStruct, Children: wrapper.Children}
	}

	return Field{Name: name.text, Kind: KindList, Nullable: nullable, Elem: &elem}, nil
}

func resolvePrimitiveKind(typeName, annotation string) (Kind, error) {
	switch typeName {
	case "INT32":
		return KindInt32, nil
	case "INT64":
		if annotation == "TIMESTAMP_MILLIS" || annotation == "TIMESTAMP" {
			return KindTimestamp, nil
		}
		return KindInt64, nil
	case "DOUBLE", "FLOAT":
		return KindFloat64, nil
	case "BOOLEAN":
		return KindBool, nil
	case "BYTE_ARRAY":
		if annotation == "STRING" || annotation == "" {
			return KindString, nil
		}
		return KindBytes, nil
	default:
		return 0, fmt.Errorf("schema: unsupported primitive type %q", typeName)
	}
}

// MustParseInt is a small helper used by callers that embed numeric
// constants (e.g. precision) inside annotations this parser otherwise
// discards.
func MustParseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
