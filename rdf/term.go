// Package rdf provides the small RDF term model the graph codec emits into:
// IRIs, blank nodes, literals, triples and duplicate-tolerant sinks.
package rdf

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/c360studio/semcodec/document"
)

// Well-known namespaces used by the term model itself.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
)

// Type is the rdf:type predicate.
const Type = IRI(RDFNamespace + "type")

// XSD datatypes assigned by LiteralOf.
const (
	XSDString   = IRI(XSDNamespace + "string")
	XSDBoolean  = IRI(XSDNamespace + "boolean")
	XSDInteger  = IRI(XSDNamespace + "integer")
	XSDDouble   = IRI(XSDNamespace + "double")
	XSDDate     = IRI(XSDNamespace + "date")
	XSDDateTime = IRI(XSDNamespace + "dateTime")
)

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// Term is a value that can appear in a triple.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI is an absolute IRI.
type IRI string

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return string(i) }

// BlankNode is an RDF blank node.
type BlankNode struct {
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal is an RDF literal. An empty Datatype means xsd:string.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns a string representation of the literal.
func (l Literal) String() string {
	if l.Lang != "" {
		return fmt.Sprintf("%q@%s", l.Lexical, l.Lang)
	}
	if l.Datatype != "" {
		return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype)
	}
	return strconv.Quote(l.Lexical)
}

// NewLiteral returns a plain string literal.
func NewLiteral(s string) Literal {
	return Literal{Lexical: s}
}

// LangLiteral returns a language-tagged string literal.
func LangLiteral(s, lang string) Literal {
	return Literal{Lexical: s, Lang: lang}
}

// LiteralOf converts a Go scalar into a typed literal.
// Named types are converted by their underlying kind.
func LiteralOf(v any) (Literal, error) {
	switch x := v.(type) {
	case Literal:
		return x, nil
	case string:
		return Literal{Lexical: x}, nil
	case bool:
		return Literal{Lexical: strconv.FormatBool(x), Datatype: XSDBoolean}, nil
	case time.Time:
		return Literal{Lexical: x.Format(time.RFC3339Nano), Datatype: XSDDateTime}, nil
	case document.Date:
		return Literal{Lexical: x.String(), Datatype: XSDDate}, nil
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() != reflect.String {
			return Literal{Lexical: x.String()}, nil
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return Literal{Lexical: rv.String()}, nil
	case reflect.Bool:
		return Literal{Lexical: strconv.FormatBool(rv.Bool()), Datatype: XSDBoolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Literal{Lexical: strconv.FormatInt(rv.Int(), 10), Datatype: XSDInteger}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Literal{Lexical: strconv.FormatUint(rv.Uint(), 10), Datatype: XSDInteger}, nil
	case reflect.Float32, reflect.Float64:
		return Literal{Lexical: strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()), Datatype: XSDDouble}, nil
	}
	return Literal{}, fmt.Errorf("rdf: no literal form for %T", v)
}
